package main

import (
	"bytes"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/prasetyowira/cardgen/config"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to build a config that keeps history inside the test
func testConfig(t *testing.T, history bool) config.Config {
	t.Helper()
	cfg := config.Config{
		FontSize:  constant.DefaultFontSize,
		CacheSize: 16,
	}
	if history {
		cfg.HistoryDB = filepath.Join(t.TempDir(), "history.db")
	}
	return cfg
}

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemplate(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.png")
	require.NoError(t, imaging.Save(imaging.New(width, height, color.White), path))
	return path
}

func TestGenerateCmd_WritesCardsAndVerifies(t *testing.T) {
	// Arrange
	cfg := testConfig(t, true)
	template := writeTemplate(t, 1050, 600)
	out := t.TempDir()

	// Act
	stdout, err := execute(t, cfg, "generate",
		"--template", template,
		"--codes", "ABC123, XYZ789",
		"--out", out,
	)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout, constant.MsgGenerationSucceeded)
	assert.FileExists(t, filepath.Join(out, "ABC123.png"))
	assert.FileExists(t, filepath.Join(out, "XYZ789.png"))

	stdout, err = execute(t, cfg, "verify", "--dir", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ABC123.png")
	assert.Contains(t, stdout, "XYZ789.png")
	assert.NotContains(t, stdout, "FAIL")

	stdout, err = execute(t, cfg, "history", "--json")
	require.NoError(t, err)
	var runs []card.Run
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, constant.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Written)
}

func TestGenerateCmd_CodesFile(t *testing.T) {
	cfg := testConfig(t, false)
	codesFile := filepath.Join(t.TempDir(), "codes.txt")
	require.NoError(t, os.WriteFile(codesFile, []byte("AAA111\nBBB222\n\n"), 0o644))
	out := t.TempDir()

	_, err := execute(t, cfg, "generate",
		"--template", writeTemplate(t, 1050, 600),
		"--codes-file", codesFile,
		"--out", out,
		"--font-size", "20",
	)

	require.NoError(t, err)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerateCmd_InputErrors(t *testing.T) {
	template := writeTemplate(t, 1050, 600)
	square := writeTemplate(t, 800, 800)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no codes", []string{"--template", template, "--codes", " , "}, card.ErrNoCodes},
		{"no template", []string{"--codes", "ABC123"}, card.ErrNoTemplate},
		{"no output", []string{"--template", template, "--codes", "ABC123", "--no-out"}, card.ErrNoOutputDir},
		{"font size", []string{"--template", template, "--codes", "ABC123", "--font-size", "60"}, card.ErrFontSize},
		{"wrong ratio", []string{"--template", square, "--codes", "ABC123"}, card.ErrTemplateSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"generate"}, tt.args...)
			if n := len(args); args[n-1] == "--no-out" {
				args = args[:n-1]
			} else {
				args = append(args, "--out", out)
			}

			_, err := execute(t, testConfig(t, false), args...)

			assert.ErrorIs(t, err, tt.wantErr)
			entries, readErr := os.ReadDir(out)
			require.NoError(t, readErr)
			assert.Empty(t, entries)
		})
	}
}

func TestVerifyCmd_DetectsMismatch(t *testing.T) {
	// Arrange
	cfg := testConfig(t, false)
	out := t.TempDir()
	_, err := execute(t, cfg, "generate",
		"--template", writeTemplate(t, 1050, 600),
		"--codes", "ABC123",
		"--out", out,
	)
	require.NoError(t, err)
	require.NoError(t, os.Rename(filepath.Join(out, "ABC123.png"), filepath.Join(out, "OTHER.png")))
	require.NoError(t, imaging.Save(imaging.New(100, 100, color.White), filepath.Join(out, "BLANK.png")))

	// Act
	stdout, err := execute(t, cfg, "verify", "--dir", out)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2")
	assert.Contains(t, stdout, "OTHER.png")
	assert.Contains(t, stdout, "BLANK.png")
}

func TestVerifyCmd_EmptyDir(t *testing.T) {
	_, err := execute(t, testConfig(t, false), "verify", "--dir", t.TempDir())

	assert.Error(t, err)
}

func TestPreviewCmd(t *testing.T) {
	stdout, err := execute(t, testConfig(t, false), "preview", "ABC123")

	require.NoError(t, err)
	assert.Contains(t, stdout, constant.RedemptionURLPrefix+"ABC123")
	assert.Greater(t, len(stdout), len(constant.RedemptionURLPrefix)+100)
}

func TestHistoryCmd_Disabled(t *testing.T) {
	_, err := execute(t, testConfig(t, false), "history")

	assert.ErrorIs(t, err, card.ErrHistoryDisabled)
}

func TestHistoryCmd_Table(t *testing.T) {
	cfg := testConfig(t, true)
	_, err := execute(t, cfg, "generate",
		"--template", writeTemplate(t, 1050, 600),
		"--codes", "ABC123",
		"--out", t.TempDir(),
	)
	require.NoError(t, err)

	stdout, err := execute(t, cfg, "history", "--limit", "5")

	require.NoError(t, err)
	assert.Contains(t, stdout, "RUN")
	assert.Contains(t, stdout, constant.RunStatusSucceeded)
	assert.Contains(t, stdout, "1/1")
}

func TestGenerateCmd_UnopenableHistoryStillWritesCards(t *testing.T) {
	// Arrange - history path below a regular file cannot be created
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg := testConfig(t, false)
	cfg.HistoryDB = filepath.Join(blocker, "history.db")
	out := t.TempDir()

	// Act
	stdout, err := execute(t, cfg, "generate",
		"--template", writeTemplate(t, 1050, 600),
		"--codes", "ABC123",
		"--out", out,
	)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout, constant.MsgGenerationSucceeded)
	assert.FileExists(t, filepath.Join(out, "ABC123.png"))

	_, err = execute(t, cfg, "history")
	assert.Error(t, err)
}

func TestGenerateCmd_InputErrorsDoNotCreateHistory(t *testing.T) {
	template := writeTemplate(t, 1050, 600)
	square := writeTemplate(t, 800, 800)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no codes", []string{"--template", template, "--codes", " , "}, card.ErrNoCodes},
		{"wrong ratio", []string{"--template", square, "--codes", "ABC123"}, card.ErrTemplateSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig(t, true)

			// Act
			args := append([]string{"generate", "--out", t.TempDir()}, tt.args...)
			_, err := execute(t, cfg, args...)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, cfg.HistoryDB)
		})
	}
}
