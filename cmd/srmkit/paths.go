package main

import (
	"os"
	"path/filepath"
	"strings"
)

const envSrmkitOutDir = "SRMKIT_OUT_DIR"

// resolveOutDir picks where results are written: the --out-dir flag (or
// config value already folded into it), then $SRMKIT_OUT_DIR, then the
// directory holding the first input.
func resolveOutDir(flagDir string, firstInput string) string {
	if d := strings.TrimSpace(flagDir); d != "" {
		return filepath.Clean(d)
	}
	if d := strings.TrimSpace(os.Getenv(envSrmkitOutDir)); d != "" {
		return filepath.Clean(d)
	}
	if firstInput == "" {
		return "."
	}
	return filepath.Dir(firstInput)
}

// firstPath returns the first non-blank path.
func firstPath(paths ...string) string {
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}
