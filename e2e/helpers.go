package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildSimscanBinary builds cmd/simscan into a temporary directory
func buildSimscanBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "simscan")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/simscan")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build simscan binary: %v\n%s", err, out)
	}
	return binaryPath
}

// runSimscan runs the binary with HOME isolated so no user configuration leaks in
func runSimscan(t *testing.T, binaryPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "SIMSCAN_NO_PROGRESS=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// copySubmissions copies testdata/submissions into a temporary directory
func copySubmissions(t *testing.T) string {
	t.Helper()

	src, err := filepath.Abs(filepath.Join("..", "testdata", "submissions"))
	if err != nil {
		t.Fatalf("Failed to resolve testdata: %v", err)
	}
	dst := t.TempDir()
	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		t.Fatalf("Failed to copy submissions: %v", err)
	}
	return dst
}

// createTestConfigFile writes a .simscan.toml into dir
func createTestConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	configFile := filepath.Join(dir, ".simscan.toml")
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}

func outputDirConfig(outputDir string) string {
	return fmt.Sprintf("[output]\ndirectory = %q\n", outputDir)
}
