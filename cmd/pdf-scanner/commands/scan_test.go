package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/pdf/pdftest"
)

func TestScanCommand_JSONReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "invoice.pdf")
	require.NoError(t, os.WriteFile(input, pdftest.Minimal("ID 1234567 END", "no digits here"), 0o644))
	outDir := filepath.Join(dir, "signatures")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"scan", "--json", "--no-color", "-o", outDir, input})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		scanOpts = scanFlags{}
		jsonOutput, noColor = false, false
	})

	require.NoError(t, Execute())

	var report domain.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Artifacts, 1)
	assert.Equal(t, "1234567.jpg", report.Artifacts[0].Filename)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, domain.ErrorTypeNoMatch, report.Failures[0].Reason)

	assert.FileExists(t, filepath.Join(outDir, "1234567.jpg"))
}
