package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/otc/internal/core"
)

var methodLabels = map[core.CalculationMethod]string{
	core.MethodORBased:  "Basé OR",
	core.MethodOTCBased: "Basé OTC",
}

// ProjectsPage lists projects with a method toggle for each.
func ProjectsPage(settings []core.ProjectSetting) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h2>Méthode de calcul par projet</h2>`)
		b.WriteString(`<p><button type="button" id="refresh-views">Rafraîchir les analyses</button> <span id="project-status"></span></p>`)
		b.WriteString(`<table><thead><tr><th>Projet</th><th>Méthode</th><th>Mis à jour</th></tr></thead><tbody>`)
		for _, s := range settings {
			fmt.Fprintf(&b, `<tr><td>%s</td><td><select class="method" data-project="%s">`, e(s.Name), e(s.ProjectUUID))
			for _, m := range []core.CalculationMethod{core.MethodORBased, core.MethodOTCBased} {
				sel := ""
				if m == s.CalculationMethod {
					sel = " selected"
				}
				fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, e(string(m)), sel, e(methodLabels[m]))
			}
			updated := ""
			if !s.UpdatedAt.IsZero() {
				updated = s.UpdatedAt.Format("02/01/2006 15:04")
			}
			fmt.Fprintf(&b, `</select></td><td>%s</td></tr>`, e(updated))
		}
		if len(settings) == 0 {
			b.WriteString(`<tr><td colspan="3">Aucun projet</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(projectsScript)

		_, err := io.WriteString(w, b.String())
		return err
	})
	return Layout("Projets", "/projects", body)
}

const projectsScript = `<script>
(function () {
  const status = document.getElementById("project-status");
  const show = async (res) => {
    if (res.ok) { status.textContent = "OK"; return; }
    const body = await res.json();
    status.textContent = body.message + " (" + body.code + ")";
  };
  document.querySelectorAll("select.method").forEach((sel) => {
    sel.addEventListener("change", async () => {
      status.textContent = "…";
      const res = await fetch("/ui/projects/" + sel.dataset.project + "/calculation-method", {
        method: "POST",
        headers: {"Content-Type": "application/json"},
        body: JSON.stringify({method: sel.value}),
      });
      show(res);
    });
  });
  document.getElementById("refresh-views").addEventListener("click", async () => {
    status.textContent = "…";
    show(await fetch("/ui/analytics/refresh", {method: "POST"}));
  });
})();
</script>`
