package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/otc/internal/core"
)

// OrdersPageParams is everything the orders page shows.
type OrdersPageParams struct {
	Page    *core.OrderPage
	Options core.FilterOptions
}

type orderColumn struct {
	key   string
	label string
}

var orderColumns = []orderColumn{
	{"succursale", "Succursale"},
	{"operateur", "Opérateur"},
	{"date_cde", "Date Cde"},
	{"num_cde", "Num Cde"},
	{"po_client", "PO Client"},
	{"reference", "Référence"},
	{"designation", "Désignation"},
	{"qte_cde", "Qté Cde"},
	{"qte_livree", "Qté Livrée"},
	{"solde", "Solde"},
	{"date_bl", "Date BL"},
	{"num_bl", "Num BL"},
	{"status", "Status"},
	{"num_client", "Num Client"},
	{"nom_clients", "Nom Clients"},
}

// OrdersPage renders the full orders page.
func OrdersPage(p OrdersPageParams) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := importForm(w); err != nil {
			return err
		}
		if err := filterForm(w, p); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="orders">`); err != nil {
			return err
		}
		if err := OrdersTable(p.Page).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		_, err := io.WriteString(w, ordersScript)
		return err
	})
	return Layout("Commandes", "/", body)
}

func importForm(w io.Writer) error {
	_, err := io.WriteString(w, `<section>
<h2>Import CSV</h2>
<form id="import-form">
<input type="file" name="file" accept=".csv,text/csv" required>
<button type="submit">Importer</button>
<span id="import-status"></span>
</form>
<p><small>L'import remplace toutes les commandes existantes.</small></p>
</section>
`)
	return err
}

func filterForm(w io.Writer, p OrdersPageParams) error {
	f := p.Page.Filter
	var b strings.Builder
	b.WriteString(`<form class="filters" method="get" action="/">`)
	fmt.Fprintf(&b, `<input type="search" name="q" placeholder="Rechercher" value="%s">`, e(f.Query))
	writeSelect(&b, "succursale", "Toutes les succursales", p.Options.Succursales, f.Succursale)
	writeSelect(&b, "status", "Tous les status", p.Options.Statuses, f.Status)
	fmt.Fprintf(&b, `<input type="date" name="date_from" value="%s">`, e(f.DateFrom))
	fmt.Fprintf(&b, `<input type="date" name="date_to" value="%s">`, e(f.DateTo))
	b.WriteString(`<button type="submit">Filtrer</button></form>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSelect(b *strings.Builder, name, placeholder string, values []string, selected string) {
	fmt.Fprintf(b, `<select name="%s"><option value="">%s</option>`, e(name), e(placeholder))
	for _, v := range values {
		sel := ""
		if v == selected {
			sel = " selected"
		}
		fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, e(v), sel, e(v))
	}
	b.WriteString(`</select>`)
}

// OrdersTable renders the result table and pager. It is also served alone
// for HTMX requests.
func OrdersTable(page *core.OrderPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<p>%d commande(s)</p>`, page.TotalRows)
		b.WriteString(`<table><thead><tr><th><input type="checkbox" id="select-all"></th>`)
		for _, c := range orderColumns {
			dir := "asc"
			marker := ""
			if page.Filter.Sort.Column == c.key {
				if page.Filter.Sort.Dir == "asc" {
					dir = "desc"
					marker = " ▲"
				} else {
					marker = " ▼"
				}
			}
			fmt.Fprintf(&b, `<th><a href="?%s">%s%s</a></th>`,
				e(pageQuery(page.Filter, page.Filter.Page, c.key, dir)), e(c.label), marker)
		}
		b.WriteString(`</tr></thead><tbody>`)

		for _, o := range page.Orders {
			fmt.Fprintf(&b, `<tr><td><input type="checkbox" name="id" value="%d"></td>`, o.ID)
			cells := []string{
				o.Succursale, o.Operateur, deref(o.DateCde), o.NumCde, deref(o.PoClient),
				o.Reference, o.Designation, formatQty(o.QteCde), formatQty(o.QteLivree),
				formatOptQty(o.Solde), deref(o.DateBl), deref(o.NumBl),
			}
			for _, c := range cells {
				fmt.Fprintf(&b, `<td>%s</td>`, e(c))
			}
			fmt.Fprintf(&b, `<td><span class="badge">%s</span></td><td>%s</td><td>%s</td></tr>`,
				e(o.Status), e(deref(o.NumClient)), e(deref(o.NomClients)))
		}
		if len(page.Orders) == 0 {
			fmt.Fprintf(&b, `<tr><td colspan="%d">Aucune commande</td></tr>`, len(orderColumns)+1)
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<div class="pager"><button type="button" id="delete-selected">Supprimer la sélection</button>`)
		if page.Page > 1 {
			fmt.Fprintf(&b, `<a href="?%s">Précédent</a>`,
				e(pageQuery(page.Filter, page.Page-1, page.Filter.Sort.Column, page.Filter.Sort.Dir)))
		}
		fmt.Fprintf(&b, `<span>Page %d / %d</span>`, page.Page, page.TotalPages)
		if page.Page < page.TotalPages {
			fmt.Fprintf(&b, `<a href="?%s">Suivant</a>`,
				e(pageQuery(page.Filter, page.Page+1, page.Filter.Sort.Column, page.Filter.Sort.Dir)))
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func pageQuery(f core.OrderFilter, page int, sort, dir string) string {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", f.Query)
	set("succursale", f.Succursale)
	set("status", f.Status)
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	set("sort", sort)
	set("dir", dir)
	v.Set("page", strconv.Itoa(page))
	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return v.Encode()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatQty(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptQty(f *float64) string {
	if f == nil {
		return ""
	}
	return formatQty(*f)
}

const ordersScript = `<script>
(function () {
  const status = document.getElementById("import-status");
  document.getElementById("import-form").addEventListener("submit", async (ev) => {
    ev.preventDefault();
    if (!confirm("Remplacer toutes les commandes par le contenu de ce fichier ?")) return;
    const res = await fetch("/ui/import", {method: "POST", body: new FormData(ev.target)});
    const body = await res.json();
    if (!res.ok) { status.textContent = body.message + " (" + body.code + ")"; return; }
    const events = new EventSource("/ui/import/" + body.import_id + "/progress");
    events.addEventListener("progress", (m) => {
      const p = JSON.parse(m.data);
      status.textContent = p.inserted + " / " + p.total + (p.error ? " : " + p.error : "");
    });
    events.addEventListener("complete", (m) => {
      events.close();
      const p = JSON.parse(m.data);
      if (p.phase === "failed") { status.textContent = p.inserted + " / " + p.total + " : " + p.error; return; }
      status.textContent = "";
      location.reload();
    });
  });
  const all = document.getElementById("select-all");
  if (all) all.addEventListener("change", () => {
    document.querySelectorAll("input[name=id]").forEach((c) => { c.checked = all.checked; });
  });
  document.getElementById("delete-selected").addEventListener("click", async () => {
    const ids = Array.from(document.querySelectorAll("input[name=id]:checked")).map((c) => Number(c.value));
    if (ids.length === 0) return;
    if (!confirm("Supprimer " + ids.length + " commande(s) ?")) return;
    const res = await fetch("/ui/orders/delete", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({ids: ids, confirm: true}),
    });
    if (res.ok) location.reload();
  });
})();
</script>`
