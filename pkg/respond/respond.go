package respond

import (
	"encoding/json"
	"io"
)

func JSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func Error(w io.Writer, message string) error {
	return JSON(w, map[string]string{"error": message})
}
