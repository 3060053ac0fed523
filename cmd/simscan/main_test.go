package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/version"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSubmissions(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

const copied = `public class Main {
    public static void main(String[] args) {
        int total = 0;
        for (int i = 0; i < args.length; i++) {
            total += Integer.parseInt(args[i]);
        }
        System.out.println("sum " + total);
    }
}`

func TestScanCommand_StdoutSeveralFileNamesIsStable(t *testing.T) {
	args := []string{"scan", "--no-progress", "--stdout", "--seed", "7", "--include", "**/*",
		"../../testdata/submissions", "Main.java", "README.md"}

	first, _, err := runCLI(t, args...)
	require.NoError(t, err)

	mainAt := strings.Index(first, "Main.java\n---------\n")
	readmeAt := strings.Index(first, "README.md\n---------\n")
	require.GreaterOrEqual(t, mainAt, 0)
	require.GreaterOrEqual(t, readmeAt, 0)
	assert.Less(t, mainAt, readmeAt)

	for i := 0; i < 10; i++ {
		out, _, err := runCLI(t, args...)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short()+"\n", out)

	out, _, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)

	out, _, err = runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "simscan "))
}

func TestScanCommand_StdoutJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeSubmissions(t, root, map[string]string{
		"alice/Main.java": copied,
		"bob/Main.java":   "// renamed nothing\n" + copied,
		"carol/Main.java": "class Main { void run() { System.out.println(\"hello world from carol\"); } }",
		"dave/Main.java":  "class Main { int value; Main(int v) { value = v * 2 + 1; } }",
	})

	out, stderr, err := runCLI(t, "scan", "--seed", "3", "--permutations", "300", "--json", "--stdout", "--no-progress", root, "Main.java")
	require.NoError(t, err)

	var report domain.SimilarityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Main.java", report.FileName)
	assert.Equal(t, 4, report.Statistics.DocumentCount)
	assert.Equal(t, 300, report.Statistics.PermutationCount)
	assert.Equal(t, []string{"alice", "bob"}, report.FlaggedLabels())
	assert.Contains(t, stderr, "Main.java: 2 submissions have suspicious similarity")
}

func TestScanCommand_WritesReportAndHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeSubmissions(t, root, map[string]string{
		"alice/Main.java": copied,
		"bob/Main.java":   copied,
	})
	outDir := filepath.Join(t.TempDir(), "reports")
	db := filepath.Join(t.TempDir(), "runs.db")
	metricsFile := filepath.Join(t.TempDir(), "simscan.prom")

	_, _, err := runCLI(t, "scan", "--no-progress", "--seed", "1", "-o", outDir, "--history", db, "--metrics-file", metricsFile, root, "Main.java")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outDir, "Main Clusters.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Main.java\n---------\nAverage Max Similarity: 1.000\n"))
	assert.Contains(t, string(content), "alice\n-----\n1.000 bob\n")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "simscan_runs_total")

	out, _, err := runCLI(t, "history", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Main.java")

	out, _, err = runCLI(t, "history", "--history", db, "1")
	require.NoError(t, err)
	assert.Equal(t, "1.000 alice bob\n1.000 bob alice\n", out)
}

func TestScanCommand_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeSubmissions(t, root, map[string]string{
		".simscan.toml":   "[input]\ninclude_patterns = [\"**/*.txt\"]\n\n[output]\nformat = \"csv\"\n",
		"alice/essay.txt": "the cat sat on the mat and looked out of the window",
		"bob/essay.txt":   "the cat sat on the mat and looked out of the window",
	})

	out, _, err := runCLI(t, "scan", "--no-progress", "--stdout", root, "essay.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "file,label,other,similarity\nessay.txt,alice,bob,1.0000\n")
}

func TestScanCommand_RequiresFileName(t *testing.T) {
	_, _, err := runCLI(t, "scan", t.TempDir())
	assert.Error(t, err)
}

func TestScanCommand_ConflictingFormats(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, _, err := runCLI(t, "scan", "--json", "--csv", t.TempDir(), "Main.java")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidInput, domain.ErrorCode(err))
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".simscan.toml")

	out, _, err := runCLI(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "permutations = 2500")

	_, _, err = runCLI(t, "init", "--config", path)
	assert.Error(t, err)

	_, _, err = runCLI(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestHistoryCommand_NoDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "history")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidInput, domain.ErrorCode(err))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, domain.NewConfigError("bad value", errors.New("permutations must be >= 1")))

	out := buf.String()
	assert.Contains(t, out, "Error: Configuration file or settings error\n")
	assert.Contains(t, out, "bad value")
	assert.Contains(t, out, "simscan init")
}
