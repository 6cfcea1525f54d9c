package report

import (
	"io"
	"strings"

	"github.com/temirov/ghmonitor/internal/monitor"
)

// renderList writes one repository name per line.
func renderList(writer io.Writer, monitorReport monitor.Report) error {
	var builder strings.Builder
	for _, repository := range monitorReport.Repositories {
		builder.WriteString(repository.Name)
		builder.WriteString(newlineConstant)
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}
