package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", wantDebug: true},
		{name: "info json", level: "info", format: "json", wantJSON: true},
		{name: "unknown level falls back to info", level: "loud", format: "text"},
		{name: "case insensitive", level: "DEBUG", format: "JSON", wantDebug: true, wantJSON: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tc.level, tc.format, &buf)
			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			assert.Contains(t, out, "info line")
			if tc.wantDebug {
				assert.Contains(t, out, "debug line")
			} else {
				assert.NotContains(t, out, "debug line")
			}
			if tc.wantJSON {
				lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
				var rec map[string]any
				require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
				assert.Equal(t, "info line", rec["msg"])
			}
		})
	}
}
