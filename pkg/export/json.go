// Package export serializes harvested recipes.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"recipe-harvest/pkg/domain"
)

// ToJSON renders recipes as an indented JSON array, non-ASCII text kept verbatim.
// On failure it returns a readable error text together with the error.
func ToJSON(recipes []domain.Recipe) (string, error) {
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	data, err := marshal(recipes)
	if err != nil {
		return fmt.Sprintf("Error converting to JSON: %v", err), fmt.Errorf("convert recipes to JSON: %w", err)
	}
	return string(data), nil
}

// WriteFile writes the JSON rendering of recipes to path, creating parent directories
func WriteFile(path string, recipes []domain.Recipe) error {
	out, err := ToJSON(recipes)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func marshal(v any) (data []byte, err error) {
	// custom marshalers may panic on malformed values; report that as an error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marshal panic: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
