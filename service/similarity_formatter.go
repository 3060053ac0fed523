package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ludo-technologies/simscan/domain"
)

// SimilarityFormatter implements the SimilarityOutputFormatter interface
type SimilarityFormatter struct{}

// NewSimilarityFormatter creates a new similarity formatter
func NewSimilarityFormatter() *SimilarityFormatter {
	return &SimilarityFormatter{}
}

// Format formats the report according to the specified format
func (f *SimilarityFormatter) Format(report *domain.SimilarityReport, format domain.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(report, format, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write writes the formatted report to the writer
func (f *SimilarityFormatter) Write(report *domain.SimilarityReport, format domain.OutputFormat, writer io.Writer) error {
	if report == nil {
		return domain.NewOutputError("report cannot be nil", nil)
	}

	switch format {
	case domain.OutputFormatText, "":
		return f.writeText(report, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, report)
	case domain.OutputFormatCSV:
		return f.writeCSV(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeText renders the plain report: a header with the corpus statistics,
// then one block per flagged submission listing its similar peers.
func (f *SimilarityFormatter) writeText(report *domain.SimilarityReport, writer io.Writer) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n%s\n", report.FileName, Underline(report.FileName))

	if report.IsSkipped() {
		fmt.Fprintf(&buf, "Not clustered: %s\n", report.SkipReason)
	} else {
		fmt.Fprintf(&buf, "Average Max Similarity: %.3f\n", report.Statistics.Mean)
		fmt.Fprintf(&buf, "Standard Deviation: %.3f\n\n\n", report.Statistics.StdDev)

		for _, c := range report.Clusters {
			fmt.Fprintf(&buf, "%s\n%s\n", c.Label, Underline(c.Label))
			for _, m := range c.Matches {
				fmt.Fprintf(&buf, "%.3f %s\n", m.Similarity, m.Label)
			}
			buf.WriteByte('\n')
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&buf, "Skipped\n%s\n", Underline("Skipped"))
		for _, s := range report.Skipped {
			fmt.Fprintf(&buf, "%s (%s): %s\n", s.Label, s.Path, s.Reason)
		}
	}

	if _, err := writer.Write(buf.Bytes()); err != nil {
		return domain.NewOutputError("failed to write text report", err)
	}
	return nil
}

// writeCSV writes one row per flagged ordered pair
func (f *SimilarityFormatter) writeCSV(report *domain.SimilarityReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	if err := csvWriter.Write([]string{"file", "label", "other", "similarity"}); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}

	for _, c := range report.Clusters {
		for _, m := range c.Matches {
			record := []string{
				report.FileName,
				c.Label,
				m.Label,
				strconv.FormatFloat(m.Similarity, 'f', 4, 64),
			}
			if err := csvWriter.Write(record); err != nil {
				return domain.NewOutputError("failed to write CSV record", err)
			}
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return domain.NewOutputError("failed to flush CSV", err)
	}
	return nil
}
