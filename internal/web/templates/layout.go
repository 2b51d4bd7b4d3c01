// Package templates renders the dashboard pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

var e = templ.EscapeString[string]

// Layout wraps body in the page chrome shared by every dashboard page.
func Layout(title string, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s · OTC</title>
<style>%s</style>
</head>
<body>
<nav class="nav">%s%s</nav>
<main>
`, e(title), baseCSS, navLink("/", "Commandes", active), navLink("/projects", "Projets", active)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

func navLink(href, label, active string) string {
	class := ""
	if href == active {
		class = ` class="active"`
	}
	return fmt.Sprintf(`<a href="%s"%s>%s</a>`, e(href), class, e(label))
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong><p>%s</p><small>Code: %s</small></div>`,
			e(message), e(action), e(code))
		return err
	})
}

const baseCSS = `
body{font-family:system-ui,sans-serif;margin:0;color:#1f2933;background:#f5f7fa}
.nav{display:flex;gap:1rem;padding:.75rem 1.5rem;background:#243b53}
.nav a{color:#d9e2ec;text-decoration:none}.nav a.active{color:#fff;font-weight:600}
main{padding:1.5rem}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{padding:.35rem .5rem;border-bottom:1px solid #e4e7eb;text-align:left;font-size:.85rem}
th a{color:inherit}
form.filters{display:flex;flex-wrap:wrap;gap:.5rem;margin-bottom:1rem}
.alert{border:1px solid #e12d39;background:#ffe3e3;padding:.75rem;margin:1rem 0}
.pager{display:flex;gap:.5rem;margin-top:1rem}
.badge{padding:.1rem .4rem;border-radius:.25rem;background:#d9e2ec}
`
