// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files: the filename is the key name and the trimmed file contents are the
// value. Supported key files: semantic-scholar-api-key, openalex-mailto.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// Key file names recognized by the enrichment stage.
const (
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyOpenAlexMailto  = "openalex-mailto"
)

// Load reads all files in dir into a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map. Unreadable
// files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[entry.Name()] = value
		}
	}
	return out, nil
}

// ApplyEnrich copies loaded credentials into the enrichment configuration.
// Values already set by flags or environment take precedence.
func ApplyEnrich(loaded map[string]string, cfg *types.EnrichConfig) {
	if cfg.SemanticScholarAPIKey == "" {
		cfg.SemanticScholarAPIKey = loaded[KeySemanticScholar]
	}
	if cfg.OpenAlexMailto == "" {
		cfg.OpenAlexMailto = loaded[KeyOpenAlexMailto]
	}
}
