package service

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/simscan/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Underline returns a row of hyphens as wide as s.
func Underline(s string) string {
	return strings.Repeat("-", utf8.RuneCountInString(s))
}

// ReportFileName names the report of a submission file: the file name
// without its extension followed by " Clusters" and the format's extension,
// so Main.java produces "Main Clusters.txt".
func ReportFileName(fileName string, format domain.OutputFormat) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return base + " Clusters" + format.Extension()
}
