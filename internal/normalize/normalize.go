// Package normalize canonicalizes free-text categorical listing fields
// against their closed vocabularies. All transforms are pure and idempotent.
package normalize

import (
	"fmt"
	"strings"
)

// Canonical vocabularies.
var (
	PgTypes     = []string{"boys", "girls", "co"}
	Beds        = []string{"single", "double", "none"}
	WifiValues  = []string{"yes", "no"}
	Furnishings = []string{"furnished", "semi", "unfurnished", "no"}
)

// Legacy pgType labels from an earlier schema revision, mapped explicitly
// instead of being rejected.
var legacyPgTypes = map[string]string{
	"boys pg":  "boys",
	"girls pg": "girls",
	"both":     "co",
}

func fold(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Wifi returns the canonical wifi value, defaulting to "no" when absent.
func Wifi(raw string) string {
	if v := fold(raw); v != "" {
		return v
	}
	return "no"
}

// Furnished returns the canonical furnished value. The "no" default predates
// the furnished/semi/unfurnished vocabulary and is kept for compatibility.
func Furnished(raw string) string {
	if v := fold(raw); v != "" {
		return v
	}
	return "no"
}

// Bed returns the canonical bed value, defaulting to "none" when absent.
func Bed(raw string) string {
	if v := fold(raw); v != "" {
		return v
	}
	return "none"
}

// PgType maps the input onto the canonical pgType vocabulary, translating
// legacy labels. Values outside the vocabulary are rejected.
func PgType(raw string) (string, error) {
	v := fold(raw)
	if mapped, ok := legacyPgTypes[v]; ok {
		return mapped, nil
	}
	for _, known := range PgTypes {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("pgType must be one of %s, got %q", strings.Join(PgTypes, "/"), raw)
}

// Filter folds a free-text filter input the same way stored values are
// folded, so comparisons stay case-insensitive and whitespace-proof.
func Filter(raw string) string {
	return fold(raw)
}
