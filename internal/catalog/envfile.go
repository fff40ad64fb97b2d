// Package catalog resolves the three-level check definitions tree
// (role/container/check) into a flat catalog of check definitions.
package catalog

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// DefaultsFile is the name of the per-level defaults file. A leaf with this
// name contributes inherited values and is never itself a check.
const DefaultsFile = "DEFAULTS.env"

// parseEnvFile splits contents into shell words and collects KEY=VALUE
// assignments. Words without an "=" are ignored, as are comments.
func parseEnvFile(contents string) (map[string]string, error) {
	tokens, err := shlex.Split(contents)
	if err != nil {
		return nil, fmt.Errorf("tokenizing env file: %w", err)
	}

	vars := make(map[string]string)
	for _, token := range tokens {
		key, value, isAssignment := strings.Cut(token, "=")
		if isAssignment {
			vars[key] = value
		}
	}
	return vars, nil
}
