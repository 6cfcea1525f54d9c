package report

import (
	"io"
	"text/template"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	markdownTemplateNameConstant = "report.md.tmpl"
	markdownTemplatePathConstant = "templates/report.md.tmpl"
	markdownCellFunctionConstant = "cell"
)

var markdownTemplate = template.Must(
	template.New(markdownTemplateNameConstant).
		Funcs(template.FuncMap{markdownCellFunctionConstant: markdownCell}).
		ParseFS(templateFiles, markdownTemplatePathConstant),
)

func renderMarkdown(writer io.Writer, monitorReport monitor.Report) error {
	return markdownTemplate.Execute(writer, newTemplateView(monitorReport))
}
