// Package config loads and validates the VaultSwipe configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// storageLocation expands a leading ~ and $VAR references in the storage
// location configured under key. Referencing an unset variable is an error.
func storageLocation(key, raw string) (string, error) {
	loc := strings.TrimSpace(raw)
	if loc == "" {
		return "", nil
	}

	if loc == "~" || strings.HasPrefix(loc, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%s '%s': cannot expand ~: %w", key, raw, err)
		}
		loc = home + loc[1:]
	}

	var missing []string
	loc = os.Expand(loc, func(name string) string {
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%s '%s' uses unset variable %s", key, raw, strings.Join(missing, ", "))
	}
	return filepath.Clean(loc), nil
}
