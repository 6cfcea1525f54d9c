package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const yamlIndentConstant = 2

func renderYAML(writer io.Writer, monitorReport monitor.Report) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(newDocument(monitorReport)); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
