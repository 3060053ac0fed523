package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/simscan/domain"
)

func sampleReport() *domain.SimilarityReport {
	return &domain.SimilarityReport{
		FileName: "Main.java",
		Statistics: &domain.SimilarityStatistics{
			DocumentCount: 4,
			Mean:          0.5,
			StdDev:        0.5,
			StdFactor:     2,
			Threshold:     1.5,
			Cutoff:        1,
			FlaggedPairs:  2,
		},
		Clusters: []domain.SimilarityCluster{
			{Label: "alice", Matches: []domain.SimilarityMatch{{Label: "bob", Similarity: 1}}},
			{Label: "bob", Matches: []domain.SimilarityMatch{{Label: "alice", Similarity: 1}}},
		},
	}
}

func TestSimilarityFormatter_Text(t *testing.T) {
	out, err := NewSimilarityFormatter().Format(sampleReport(), domain.OutputFormatText)
	require.NoError(t, err)

	want := "Main.java\n" +
		"---------\n" +
		"Average Max Similarity: 0.500\n" +
		"Standard Deviation: 0.500\n" +
		"\n\n" +
		"alice\n-----\n1.000 bob\n\n" +
		"bob\n---\n1.000 alice\n\n"
	assert.Equal(t, want, out)
}

func TestSimilarityFormatter_TextSkipped(t *testing.T) {
	report := &domain.SimilarityReport{
		FileName:   "Main.java",
		SkipReason: SkipReasonSingleFile,
		Skipped:    []domain.SkippedDocument{{Label: "erin", Path: "erin/Main.java", Reason: SkipReasonNoShingles}},
	}

	out, err := NewSimilarityFormatter().Format(report, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Not clustered: cannot cluster a single file\n")
	assert.Contains(t, out, "Skipped\n-------\nerin (erin/Main.java): fewer words than the shingle width\n")
	assert.NotContains(t, out, "Average Max Similarity")
}

func TestSimilarityFormatter_CSV(t *testing.T) {
	out, err := NewSimilarityFormatter().Format(sampleReport(), domain.OutputFormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"file,label,other,similarity",
		"Main.java,alice,bob,1.0000",
		"Main.java,bob,alice,1.0000",
	}, lines)
}

func TestSimilarityFormatter_JSON(t *testing.T) {
	out, err := NewSimilarityFormatter().Format(sampleReport(), domain.OutputFormatJSON)
	require.NoError(t, err)

	var decoded domain.SimilarityReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Main.java", decoded.FileName)
	assert.Equal(t, 2, decoded.Statistics.FlaggedPairs)
	assert.Equal(t, []string{"alice", "bob"}, decoded.FlaggedLabels())
}

func TestSimilarityFormatter_YAML(t *testing.T) {
	out, err := NewSimilarityFormatter().Format(sampleReport(), domain.OutputFormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Main.java", decoded["file_name"])
	assert.Contains(t, out, "  mean: 0.5")
}

func TestSimilarityFormatter_Errors(t *testing.T) {
	f := NewSimilarityFormatter()

	_, err := f.Format(nil, domain.OutputFormatText)
	assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))

	_, err = f.Format(sampleReport(), "html")
	assert.Equal(t, domain.ErrCodeUnsupportedFormat, domain.ErrorCode(err))
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		fileName string
		format   domain.OutputFormat
		want     string
	}{
		{"Main.java", domain.OutputFormatText, "Main Clusters.txt"},
		{"Main.java", domain.OutputFormatJSON, "Main Clusters.json"},
		{"essay.tar.gz", domain.OutputFormatCSV, "essay.tar Clusters.csv"},
		{"README", domain.OutputFormatYAML, "README Clusters.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ReportFileName(tt.fileName, tt.format))
		})
	}
}

func TestUnderline(t *testing.T) {
	assert.Equal(t, "-----", Underline("héllo"))
	assert.Equal(t, "", Underline(""))
}
