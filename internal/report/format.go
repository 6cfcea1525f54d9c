package report

import (
	"fmt"
	"strings"
)

const (
	unsupportedFormatTemplateConstant = "unsupported report format %q (expected one of: %s)"
	markdownAliasConstant             = "md"
	formatListSeparatorConstant       = ", "
)

// Format identifies a report rendering.
type Format string

// Supported report formats.
const (
	FormatTOON     Format = Format("toon")
	FormatMarkdown Format = Format("markdown")
	FormatHTML     Format = Format("html")
	FormatList     Format = Format("list")
	FormatYAML     Format = Format("yaml")
	FormatAll      Format = Format("all")
)

// ConcreteFormats lists, in output order, every format that produces a file.
var ConcreteFormats = []Format{FormatTOON, FormatMarkdown, FormatHTML, FormatList, FormatYAML}

// UnsupportedFormatError reports an unrecognized format name.
type UnsupportedFormatError struct {
	Value string
}

// Error lists the accepted names.
func (formatError UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatTemplateConstant, formatError.Value, strings.Join(SupportedFormatNames(), formatListSeparatorConstant))
}

// SupportedFormatNames returns the accepted format names, "all" last.
func SupportedFormatNames() []string {
	names := make([]string, 0, len(ConcreteFormats)+1)
	for _, format := range ConcreteFormats {
		names = append(names, string(format))
	}
	return append(names, string(FormatAll))
}

// ParseFormat maps user input onto a Format. Matching is case-insensitive and "md" selects Markdown.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == markdownAliasConstant {
		return FormatMarkdown, nil
	}
	candidate := Format(normalized)
	if candidate == FormatAll {
		return FormatAll, nil
	}
	for _, format := range ConcreteFormats {
		if candidate == format {
			return format, nil
		}
	}
	return "", UnsupportedFormatError{Value: value}
}

// Expand resolves FormatAll into every concrete format.
func (format Format) Expand() []Format {
	if format == FormatAll {
		expanded := make([]Format, len(ConcreteFormats))
		copy(expanded, ConcreteFormats)
		return expanded
	}
	return []Format{format}
}
