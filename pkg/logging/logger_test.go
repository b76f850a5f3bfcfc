package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "TestCommonLogger",
			cfg:     NewConfig("TestCommonLogger"),
			wantErr: nil,
		},
		{
			name:    "TestCommonLogger_NilConfig",
			cfg:     nil,
			wantErr: errors.New("logging config is nil"),
		},
		{
			name:    "TestCommonLogger_EmptyAppName",
			cfg:     NewConfig(""),
			wantErr: errors.New("app name is empty"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CommonLogger(tt.cfg)
			require.Equal(t, tt.wantErr, err, "CommonLogger() = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestCommonLoggerWithOptions(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := CommonLoggerWithOptions(NewConfig("TestCommonLoggerWithOptions"), buf, true)
	require.NoError(t, err)

	l.Info("hello")
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"app":"TestCommonLoggerWithOptions"`)
}
