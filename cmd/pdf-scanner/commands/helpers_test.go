package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-scanner/internal/config"
	"github.com/spherical/pdf-scanner/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch")
	require.NoError(t, os.Mkdir(batch, 0o755))
	writeFile(t, filepath.Join(batch, "b.pdf"), "b")
	writeFile(t, filepath.Join(batch, "a.PDF"), "a")
	writeFile(t, filepath.Join(batch, "notes.txt"), "n")
	single := filepath.Join(dir, "single.bin")
	writeFile(t, single, "s")

	paths, err := collectPaths([]string{single, batch})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(batch, "a.PDF"),
		filepath.Join(batch, "b.pdf"),
	}, paths)

	_, err = collectPaths([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}

func TestReadInputs_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.pdf", "a.pdf", "b.pdf", "d.pdf", "e.pdf", "f.pdf", "g.pdf", "h.pdf", "i.pdf", "j.pdf"} {
		p := filepath.Join(dir, name)
		writeFile(t, p, "data-"+name)
		paths = append(paths, p)
	}

	inputs, err := readInputs(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, inputs, len(paths))
	for i, in := range inputs {
		assert.Equal(t, filepath.Base(paths[i]), in.Name)
		assert.Equal(t, "data-"+in.Name, string(in.Data))
	}

	_, err = readInputs(context.Background(), []string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(cfg, scanFlags{strategy: "QR", scope: "document", outputDir: "out", noCrop: true}))
	assert.Equal(t, config.StrategyQR, cfg.Scan.Strategy)
	assert.Equal(t, config.ScopeDocument, cfg.Scan.Scope)
	assert.Equal(t, config.OutputDir, cfg.Output.Driver)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.False(t, cfg.Crop.Enabled)

	cfg = config.DefaultConfig()
	require.NoError(t, applyFlags(cfg, scanFlags{s3Bucket: "sigs"}))
	assert.Equal(t, config.OutputS3, cfg.Output.Driver)
	assert.Equal(t, "sigs", cfg.Output.S3.Bucket)

	cfg = config.DefaultConfig()
	require.NoError(t, applyFlags(cfg, scanFlags{outputDir: "out", dryRun: true}))
	assert.Equal(t, config.OutputNone, cfg.Output.Driver)

	assert.Error(t, applyFlags(config.DefaultConfig(), scanFlags{strategy: "barcode"}))
}

func TestExitStatus(t *testing.T) {
	artifact := domain.Artifact{Filename: "1234567.jpg"}
	failure := domain.Failure{Reason: domain.ErrorTypeNoMatch, PageNumber: 2}

	assert.NoError(t, exitStatus(&domain.Report{}))
	assert.NoError(t, exitStatus(&domain.Report{Artifacts: []domain.Artifact{artifact}}))
	assert.NoError(t, exitStatus(&domain.Report{
		Artifacts: []domain.Artifact{artifact},
		Failures:  []domain.Failure{failure},
	}))

	var exitErr *ExitError
	assert.ErrorAs(t, exitStatus(&domain.Report{Failures: []domain.Failure{failure}}), &exitErr)
}

func TestFailureRows(t *testing.T) {
	report := &domain.Report{Failures: []domain.Failure{
		{DocumentName: "a.pdf", PageNumber: 2, Reason: domain.ErrorTypeNoMatch, Message: "no identifier found on page"},
		{DocumentName: "b.pdf", Reason: domain.ErrorTypeDecode, Message: "invalid PDF"},
	}}

	assert.Equal(t, [][]string{
		{"a.pdf", "2", "no_match", "no identifier found on page"},
		{"b.pdf", "-", "decode", "invalid PDF"},
	}, failureRows(report))
}
