package report

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	toonIndentConstant                  = "  "
	toonListMarkerConstant              = "- "
	toonKeySeparatorConstant            = ": "
	toonBlockOpenerConstant             = ":"
	toonDelimiterConstant               = ","
	toonNullLiteralConstant             = "null"
	toonTrueLiteralConstant             = "true"
	toonFalseLiteralConstant            = "false"
	toonArrayHeaderTemplateConstant     = "%s[%d]"
	toonFieldListTemplateConstant       = "{%s}"
	toonLineTerminatorConstant          = "\n"
	yamlNullTagConstant                 = "!!null"
	yamlBoolTagConstant                 = "!!bool"
	yamlIntTagConstant                  = "!!int"
	yamlFloatTagConstant                = "!!float"
	toonUnsupportedNodeTemplateConstant = "unsupported node kind %d"
)

var (
	toonBareKeyPattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	toonNumericLikePattern   = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)
	toonLeadingZeroPattern   = regexp.MustCompile(`^0\d+$`)
	toonStringEscapeReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
)

// renderTOON writes the report in Token-Oriented Object Notation: indentation for nesting,
// length-prefixed primitive arrays, and tabular rows for arrays of uniform flat objects.
func renderTOON(writer io.Writer, monitorReport monitor.Report) error {
	var root yaml.Node
	if encodeError := root.Encode(newDocument(monitorReport)); encodeError != nil {
		return encodeError
	}

	encoder := &toonEncoder{}
	if encodeError := encoder.writeMappingFields(&root, 0); encodeError != nil {
		return encodeError
	}

	_, writeError := io.WriteString(writer, strings.Join(encoder.lines, toonLineTerminatorConstant)+toonLineTerminatorConstant)
	return writeError
}

type toonEncoder struct {
	lines []string
}

func (encoder *toonEncoder) emit(depth int, text string) {
	encoder.lines = append(encoder.lines, strings.Repeat(toonIndentConstant, depth)+text)
}

func (encoder *toonEncoder) writeMappingFields(mapping *yaml.Node, depth int) error {
	for index := 0; index+1 < len(mapping.Content); index += 2 {
		key := encodeTOONKey(mapping.Content[index].Value)
		if fieldError := encoder.writeField(key, mapping.Content[index+1], depth); fieldError != nil {
			return fieldError
		}
	}
	return nil
}

func (encoder *toonEncoder) writeField(key string, value *yaml.Node, depth int) error {
	switch value.Kind {
	case yaml.ScalarNode:
		encoder.emit(depth, key+toonKeySeparatorConstant+encodeTOONScalar(value))
		return nil
	case yaml.MappingNode:
		encoder.emit(depth, key+toonBlockOpenerConstant)
		return encoder.writeMappingFields(value, depth+1)
	case yaml.SequenceNode:
		return encoder.writeSequence(key, value, depth)
	case yaml.AliasNode:
		return encoder.writeField(key, value.Alias, depth)
	default:
		return fmt.Errorf(toonUnsupportedNodeTemplateConstant, value.Kind)
	}
}

func (encoder *toonEncoder) writeSequence(key string, sequence *yaml.Node, depth int) error {
	header := fmt.Sprintf(toonArrayHeaderTemplateConstant, key, len(sequence.Content))

	if len(sequence.Content) == 0 {
		encoder.emit(depth, header+toonBlockOpenerConstant)
		return nil
	}

	if allScalars(sequence.Content) {
		values := make([]string, 0, len(sequence.Content))
		for _, element := range sequence.Content {
			values = append(values, encodeTOONScalar(element))
		}
		encoder.emit(depth, header+toonKeySeparatorConstant+strings.Join(values, toonDelimiterConstant))
		return nil
	}

	if fields, tabular := tabularFields(sequence.Content); tabular {
		encodedFields := make([]string, 0, len(fields))
		for _, field := range fields {
			encodedFields = append(encodedFields, encodeTOONKey(field))
		}
		encoder.emit(depth, header+fmt.Sprintf(toonFieldListTemplateConstant, strings.Join(encodedFields, toonDelimiterConstant))+toonBlockOpenerConstant)
		for _, element := range sequence.Content {
			values := make([]string, 0, len(fields))
			for index := 1; index < len(element.Content); index += 2 {
				values = append(values, encodeTOONScalar(element.Content[index]))
			}
			encoder.emit(depth+1, strings.Join(values, toonDelimiterConstant))
		}
		return nil
	}

	encoder.emit(depth, header+toonBlockOpenerConstant)
	for _, element := range sequence.Content {
		if itemError := encoder.writeListItem(element, depth+1); itemError != nil {
			return itemError
		}
	}
	return nil
}

// writeListItem renders one expanded list entry. Object entries place their first field on the
// marker line and indent the remaining fields beneath it.
func (encoder *toonEncoder) writeListItem(element *yaml.Node, depth int) error {
	switch element.Kind {
	case yaml.ScalarNode:
		encoder.emit(depth, toonListMarkerConstant+encodeTOONScalar(element))
		return nil
	case yaml.MappingNode:
		if len(element.Content) == 0 {
			encoder.emit(depth, strings.TrimSpace(toonListMarkerConstant))
			return nil
		}
		firstLine := len(encoder.lines)
		if fieldsError := encoder.writeMappingFields(element, depth+1); fieldsError != nil {
			return fieldsError
		}
		fieldIndent := strings.Repeat(toonIndentConstant, depth+1)
		encoder.lines[firstLine] = strings.Repeat(toonIndentConstant, depth) + toonListMarkerConstant + strings.TrimPrefix(encoder.lines[firstLine], fieldIndent)
		return nil
	case yaml.SequenceNode:
		nested := &toonEncoder{}
		if nestedError := nested.writeSequence("", element, 0); nestedError != nil {
			return nestedError
		}
		for lineIndex, line := range nested.lines {
			if lineIndex == 0 {
				encoder.emit(depth, toonListMarkerConstant+line)
				continue
			}
			encoder.emit(depth+1, line)
		}
		return nil
	default:
		return fmt.Errorf(toonUnsupportedNodeTemplateConstant, element.Kind)
	}
}

func allScalars(elements []*yaml.Node) bool {
	for _, element := range elements {
		if element.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

// tabularFields reports the shared field order when every element is a mapping with identical keys
// and only scalar values.
func tabularFields(elements []*yaml.Node) ([]string, bool) {
	var fields []string
	for elementIndex, element := range elements {
		if element.Kind != yaml.MappingNode || len(element.Content) == 0 {
			return nil, false
		}
		keys := make([]string, 0, len(element.Content)/2)
		for index := 0; index+1 < len(element.Content); index += 2 {
			if element.Content[index+1].Kind != yaml.ScalarNode {
				return nil, false
			}
			keys = append(keys, element.Content[index].Value)
		}
		if elementIndex == 0 {
			fields = keys
			continue
		}
		if strings.Join(keys, toonDelimiterConstant) != strings.Join(fields, toonDelimiterConstant) {
			return nil, false
		}
	}
	return fields, true
}

func encodeTOONKey(key string) string {
	if toonBareKeyPattern.MatchString(key) {
		return key
	}
	return quoteTOONString(key)
}

func encodeTOONScalar(node *yaml.Node) string {
	switch node.Tag {
	case yamlNullTagConstant:
		return toonNullLiteralConstant
	case yamlBoolTagConstant, yamlIntTagConstant:
		return node.Value
	case yamlFloatTagConstant:
		parsed, parseError := strconv.ParseFloat(node.Value, 64)
		if parseError != nil {
			return quoteTOONString(node.Value)
		}
		return strconv.FormatFloat(parsed, 'f', -1, 64)
	default:
		return encodeTOONString(node.Value)
	}
}

func encodeTOONString(value string) string {
	if requiresTOONQuoting(value) {
		return quoteTOONString(value)
	}
	return value
}

func requiresTOONQuoting(value string) bool {
	if len(value) == 0 || strings.TrimSpace(value) != value {
		return true
	}
	switch value {
	case toonTrueLiteralConstant, toonFalseLiteralConstant, toonNullLiteralConstant:
		return true
	}
	if toonNumericLikePattern.MatchString(value) || toonLeadingZeroPattern.MatchString(value) {
		return true
	}
	if strings.HasPrefix(value, strings.TrimSpace(toonListMarkerConstant)) {
		return true
	}
	return strings.ContainsAny(value, ":\"\\[]{},\n\r\t")
}

func quoteTOONString(value string) string {
	return `"` + toonStringEscapeReplacer.Replace(value) + `"`
}
