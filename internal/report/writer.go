package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	fileSystemMissingMessageConstant     = "report file system not configured"
	createDirectoryErrorTemplateConstant = "unable to create report directory %s: %w"
	renderErrorTemplateConstant          = "unable to render %s report: %w"
	writeErrorTemplateConstant           = "unable to write %s: %w"
	reportDirectoryPermissionsConstant   = 0o755
	reportFilePermissionsConstant        = 0o644
	toonFileNameConstant                 = "report.toon"
	markdownFileNameConstant             = "report.md"
	htmlFileNameConstant                 = "report.html"
	listFileNameConstant                 = "repos.txt"
	yamlFileNameConstant                 = "report.yaml"
	toonLabelConstant                    = "TOON"
	markdownLabelConstant                = "Markdown"
	htmlLabelConstant                    = "HTML"
	listLabelConstant                    = "List"
	yamlLabelConstant                    = "YAML"
)

// ErrFileSystemNotConfigured indicates the writer was built without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

type renderFunction func(writer io.Writer, monitorReport monitor.Report) error

type formatDefinition struct {
	label    string
	fileName string
	render   renderFunction
}

var formatDefinitions = map[Format]formatDefinition{
	FormatTOON:     {label: toonLabelConstant, fileName: toonFileNameConstant, render: renderTOON},
	FormatMarkdown: {label: markdownLabelConstant, fileName: markdownFileNameConstant, render: renderMarkdown},
	FormatHTML:     {label: htmlLabelConstant, fileName: htmlFileNameConstant, render: renderHTML},
	FormatList:     {label: listLabelConstant, fileName: listFileNameConstant, render: renderList},
	FormatYAML:     {label: yamlLabelConstant, fileName: yamlFileNameConstant, render: renderYAML},
}

// WrittenReport identifies one generated report file.
type WrittenReport struct {
	Format Format
	Label  string
	Path   string
}

// Writer renders monitor reports into files.
type Writer struct {
	fileSystem afero.Fs
}

// NewWriter constructs a Writer over the provided file system.
func NewWriter(fileSystem afero.Fs) *Writer {
	return &Writer{fileSystem: fileSystem}
}

// Render writes a single concrete format to writer.
func Render(writer io.Writer, format Format, monitorReport monitor.Report) error {
	definition, known := formatDefinitions[format]
	if !known {
		return UnsupportedFormatError{Value: string(format)}
	}
	if renderError := definition.render(writer, monitorReport); renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, definition.label, renderError)
	}
	return nil
}

// WriteReports renders every format selected by format into outputDirectory, creating it when
// needed, and returns the files in generation order.
func (reportWriter *Writer) WriteReports(outputDirectory string, format Format, monitorReport monitor.Report) ([]WrittenReport, error) {
	if reportWriter == nil || reportWriter.fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	selectedFormats := format.Expand()
	for _, selectedFormat := range selectedFormats {
		if _, known := formatDefinitions[selectedFormat]; !known {
			return nil, UnsupportedFormatError{Value: string(selectedFormat)}
		}
	}

	if mkdirError := reportWriter.fileSystem.MkdirAll(outputDirectory, reportDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplateConstant, outputDirectory, mkdirError)
	}

	writtenReports := make([]WrittenReport, 0, len(selectedFormats))
	for _, selectedFormat := range selectedFormats {
		definition := formatDefinitions[selectedFormat]

		var buffer bytes.Buffer
		if renderError := Render(&buffer, selectedFormat, monitorReport); renderError != nil {
			return writtenReports, renderError
		}

		reportPath := filepath.Join(outputDirectory, definition.fileName)
		if writeError := afero.WriteFile(reportWriter.fileSystem, reportPath, buffer.Bytes(), reportFilePermissionsConstant); writeError != nil {
			return writtenReports, fmt.Errorf(writeErrorTemplateConstant, reportPath, writeError)
		}
		writtenReports = append(writtenReports, WrittenReport{Format: selectedFormat, Label: definition.label, Path: reportPath})
	}

	return writtenReports, nil
}
