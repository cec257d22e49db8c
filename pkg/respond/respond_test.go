package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		wantBody interface{}
	}{
		{
			name:     "object",
			data:     map[string]string{"message": "success"},
			wantBody: map[string]interface{}{"message": "success"},
		},
		{
			name:     "numbers",
			data:     map[string]int{"id": 123},
			wantBody: map[string]interface{}{"id": float64(123)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty list",
			data:     []string{},
			wantBody: []interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, JSON(&buf, tt.data))

			var got interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
			assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
		})
	}
}

func TestJSON_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	err := JSON(&buf, map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "not found", message: "task 3 not found"},
		{name: "validation", message: "title must not be empty"},
		{name: "storage", message: "storage failure: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Error(&buf, tt.message))

			var got map[string]string
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, map[string]string{"error": tt.message}, got)
		})
	}

	assert.Error(t, Error(failingWriter{}, "lost"))
}
