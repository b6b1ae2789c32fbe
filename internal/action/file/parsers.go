package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Formats accepted by fileRead's format key.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
	FormatLines = "lines"
)

// stripBOM removes a UTF-8 BOM from the beginning of content.
func stripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
}

// decode parses content according to format.
func decode(content []byte, format string) (any, error) {
	switch format {
	case "", FormatText:
		return string(content), nil
	case FormatJSON:
		return parseJSON(content)
	case FormatYAML:
		return parseYAML(content)
	case FormatCSV:
		return parseCSV(content)
	case FormatLines:
		return parseLines(content), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// parseJSON parses JSON content and returns the result.
func parseJSON(content []byte) (any, error) {
	var result any
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, enhanceJSONError(err, content)
	}
	return result, nil
}

// enhanceJSONError adds line/column information to JSON parse errors.
func enhanceJSONError(err error, content []byte) error {
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		line, col := findLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("syntax error at line %d, column %d: %v", line, col, syntaxErr)
	}
	return err
}

// findLineCol calculates line and column number from byte offset.
func findLineCol(content []byte, offset int64) (line, col int) {
	line = 1
	col = 1

	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}

// parseYAML parses YAML content. Multiple documents become an array.
// Values are normalized to the JSON data model.
func parseYAML(content []byte) (any, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))

	var docs []any
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		docs = append(docs, normalizeYAML(doc))
	}

	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}

// normalizeYAML converts yaml.v3 scalars and maps into JSON-model values.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeYAML(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// parseCSV parses CSV content with a header row into an array of objects.
func parseCSV(content []byte) ([]any, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []any{}, nil
	}

	headers := records[0]
	rows := make([]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseLines splits content into lines without their terminators.
func parseLines(content []byte) []any {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []any{}
	}

	parts := strings.Split(text, "\n")
	lines := make([]any, len(parts))
	for i, p := range parts {
		lines[i] = p
	}
	return lines
}

// encodeContent returns the bytes fileWrite stores. Strings are written
// as-is; other values are pretty-printed JSON with a trailing newline.
func encodeContent(content any) ([]byte, error) {
	if s, ok := content.(string); ok {
		return []byte(s), nil
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("JSON marshal error: %w", err)
	}
	return append(data, '\n'), nil
}
