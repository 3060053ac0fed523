package service

import (
	"fmt"

	"github.com/ludo-technologies/simscan/domain"
)

// OutputFormatResolver resolves the output format from flags and configuration.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates format flags and returns the selected format.
// At most one of json/csv/yaml may be true; if none are, configured is used,
// and an empty configured format means text.
func (r *OutputFormatResolver) Determine(json, csv, yaml bool, configured string) (domain.OutputFormat, error) {
	formatCount := 0
	var format domain.OutputFormat

	if json {
		formatCount++
		format = domain.OutputFormatJSON
	}
	if csv {
		formatCount++
		format = domain.OutputFormatCSV
	}
	if yaml {
		formatCount++
		format = domain.OutputFormatYAML
	}

	if formatCount > 1 {
		return "", domain.NewInvalidInputError("only one output format flag can be specified", nil)
	}
	if formatCount == 1 {
		return format, nil
	}

	switch f := domain.OutputFormat(configured); f {
	case "":
		return domain.OutputFormatText, nil
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
		return f, nil
	default:
		return "", domain.NewUnsupportedFormatError(fmt.Sprintf("%q", configured))
	}
}
