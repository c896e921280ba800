package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", want: zapcore.InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNewLogger_ConsoleSplitsByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	logger, err := NewLoggerWithOutputs(
		config.LogConfig{Level: "info", Format: "console"},
		Outputs{Info: zapcore.AddSync(&info), Error: zapcore.AddSync(&errs)},
	)
	require.NoError(t, err)

	logger.Info("bucket computed")
	logger.Error("report failed")
	require.NoError(t, logger.Sync())

	assert.Contains(t, info.String(), "bucket computed")
	assert.NotContains(t, info.String(), "report failed")
	assert.Contains(t, errs.String(), "report failed")
}

func TestNewLogger_FileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewLoggerWithOutputs(config.LogConfig{
		Level:              "info",
		Format:             "json",
		FileLoggingEnabled: true,
		Directory:          dir,
		Filename:           "deliverylens.log",
		MaxSize:            1,
	}, Outputs{})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "deliverylens.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
}

func TestNewLogger_NoOutputs(t *testing.T) {
	_, err := NewLoggerWithOutputs(config.LogConfig{Level: "info", Format: "json"}, Outputs{})
	assert.ErrorIs(t, err, ErrNoOutputs)
}
