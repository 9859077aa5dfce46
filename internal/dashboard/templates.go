package dashboard

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("dashboard").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
