// Package secrets resolves credentials such as the Gemini API key and the database URL.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source holds a value.
var ErrNotConfigured = errors.New("not configured")

// Source describes where a secret may come from. The first non-empty source wins in the order
// File, Env, Value.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline value from the config file or flags.
	Value string
	// Env names an environment variable holding the value.
	Env string
	// File points to a file holding the value.
	File string
}

// Load returns the trimmed secret. A configured but empty file is an error of its own,
// so a broken mount is not silently replaced by a weaker source.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
}
