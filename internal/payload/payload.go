// Package payload resolves the opaque text injected into the target page's
// input element. The content is never parsed or validated here; whatever the
// source provides is handed to the browser verbatim.
package payload

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed default.json
var defaultPayload string

// Default returns the built-in sample payload.
func Default() string {
	return defaultPayload
}

// Load resolves the payload from the given source.
//
//	""   the built-in default
//	"-"  standard input
//	else a file path
func Load(source string) (string, error) {
	switch source {
	case "":
		return Default(), nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read payload file: %w", err)
		}
		payload := string(data)
		if strings.TrimSpace(payload) == "" {
			return "", fmt.Errorf("payload file %q is empty", source)
		}
		return payload, nil
	}
}
