package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/pkg/config"
)

func TestApplyFlags(t *testing.T) {
	cmd := processCmd()
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags([]string{
		"--workers", "3",
		"--no-ocr",
		"--log-format", "json",
		"--rules", "rules.yaml",
		"--metrics-addr", ":9191",
	}))

	c := &config.Config{
		OCR:            config.OCRConfig{Enabled: true},
		Batch:          config.BatchConfig{Workers: 8},
		Categorization: config.CategorizationConfig{Enabled: true},
		Observability:  config.ObservabilityConfig{LogLevel: "info", LogFormat: "text"},
	}
	applyFlags(cmd, c)

	assert.Equal(t, 3, c.Batch.Workers)
	assert.False(t, c.OCR.Enabled)
	assert.True(t, c.Categorization.Enabled)
	assert.Equal(t, "rules.yaml", c.Categorization.RulesFile)
	assert.Equal(t, "json", c.Observability.LogFormat)
	assert.Equal(t, "info", c.Observability.LogLevel)
	assert.True(t, c.Observability.MetricsEnabled)
	assert.Equal(t, ":9191", c.Observability.MetricsAddr)
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "text", level: "info", format: "text"},
		{name: "json", level: "debug", format: "json"},
		{name: "bad level", level: "verbose", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "console", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogging(config.ObservabilityConfig{LogLevel: tt.level, LogFormat: tt.format})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRunFormats(t *testing.T) {
	var buf bytes.Buffer
	cmd := formatsCmd()
	cmd.SetOut(&buf)

	require.NoError(t, runFormats(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "EQ Bank")
	assert.Contains(t, out, "eq_bank")
	assert.Contains(t, out, "deposit")
	assert.Contains(t, out, "credit_card")
}
