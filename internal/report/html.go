package report

import (
	"html/template"
	"io"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	htmlTemplateNameConstant = "report.html.tmpl"
	htmlTemplatePathConstant = "templates/report.html.tmpl"
)

var htmlTemplate = template.Must(template.New(htmlTemplateNameConstant).ParseFS(templateFiles, htmlTemplatePathConstant))

// renderHTML produces a standalone page; every value is escaped by html/template.
func renderHTML(writer io.Writer, monitorReport monitor.Report) error {
	return htmlTemplate.Execute(writer, newTemplateView(monitorReport))
}
