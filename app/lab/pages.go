package lab

import (
	"embed"
	"html/template"

	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/response"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	loginPage = "login.html"
	indexPage = "index.html"
)

type theme struct {
	Label      string
	Color      template.CSS
	Vulnerable bool
}

var (
	vulnerableTheme = theme{Label: "Vulnerable", Color: "#dc2626", Vulnerable: true}
	secureTheme     = theme{Label: "Secure", Color: "#2563eb"}
)

func themeFor(policy string) theme {
	if policy == binding.PermissiveName {
		return vulnerableTheme
	}
	return secureTheme
}

type page struct {
	Title     string
	Theme     theme
	Message   string
	Username  string
	SessionID string
}

func parsePages() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

func (a *App) render(name string, data page) handler.Response {
	data.Theme = a.theme
	return response.TemplateName(a.pages, name, data)
}
