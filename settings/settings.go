// Package settings loads the key→string mapping consumed by
// $INFO[...] inputs and conditional guards.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// maxFileSize bounds how large a settings overlay file may be before
// Load refuses to parse it, defense-in-depth against a pathological
// or corrupted file being handed to the YAML decoder.
const maxFileSize = 4 << 20 // 4 MiB

// Settings is a flat string-to-string mapping. The evaluator only
// reads it; Settings is never mutated once loaded.
type Settings map[string]string

// Get returns the value for key and whether it was present.
func (s Settings) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// GetOr returns the value for key, or def if key is absent.
func (s Settings) GetOr(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Load reads a YAML settings overlay from path. The file is validated
// before being handed to the decoder: it must be within maxFileSize
// and must not contain a NUL byte or other binary-looking content,
// the same defense-in-depth checks applied to workflow files before
// unmarshalling.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := validateContent(data); err != nil {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}

	out := make(Settings, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func validateContent(data []byte) error {
	if len(data) > maxFileSize {
		return fmt.Errorf("file exceeds %d byte limit", maxFileSize)
	}
	if strings.IndexByte(string(data), 0) >= 0 {
		return fmt.Errorf("file contains a NUL byte, refusing to parse as YAML")
	}
	for _, b := range data {
		switch b {
		case '\t', '\n', '\r':
			continue
		}
		if b < 0x20 || b == 0x7f {
			return fmt.Errorf("file contains a control character, refusing to parse as YAML")
		}
	}
	return nil
}
