package sitetool

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// RequiredIconSizes must each be offered by at least one manifest icon.
var RequiredIconSizes = []string{"192x192", "512x512"}

var validDisplays = []string{"fullscreen", "standalone", "minimal-ui", "browser"}

// Manifest is the subset of a web app manifest that is checked.
type Manifest struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	StartURL  string `json:"start_url"`
	Display   string `json:"display"`
	Icons     []Icon `json:"icons"`
}

// Icon is a manifest icon entry. Sizes holds space-separated WxH values.
type Icon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// ManifestError lists every problem found in a manifest.
type ManifestError struct {
	Problems []string
}

func (e *ManifestError) Error() string {
	return "invalid manifest: " + strings.Join(e.Problems, "; ")
}

// ValidateManifest parses a manifest from r and checks it. A structurally
// valid JSON document with missing fields yields a *ManifestError.
func ValidateManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if problems := m.Problems(); len(problems) > 0 {
		return &m, &ManifestError{Problems: problems}
	}
	return &m, nil
}

// Problems returns a description of every missing or invalid field.
func (m *Manifest) Problems() []string {
	var out []string
	if strings.TrimSpace(m.Name) == "" {
		out = append(out, "name is required")
	}
	if strings.TrimSpace(m.ShortName) == "" {
		out = append(out, "short_name is required")
	}
	if strings.TrimSpace(m.StartURL) == "" {
		out = append(out, "start_url is required")
	}
	if !slices.Contains(validDisplays, m.Display) {
		out = append(out, fmt.Sprintf("display %q must be one of %s", m.Display, strings.Join(validDisplays, ", ")))
	}
	if len(m.Icons) == 0 {
		out = append(out, "at least one icon is required")
		return out
	}

	offered := map[string]bool{}
	for i, icon := range m.Icons {
		if icon.Src == "" {
			out = append(out, fmt.Sprintf("icons[%d].src is required", i))
		}
		for _, s := range strings.Fields(icon.Sizes) {
			offered[strings.ToLower(s)] = true
		}
	}
	for _, size := range RequiredIconSizes {
		if !offered[size] {
			out = append(out, "missing "+size+" icon")
		}
	}
	return out
}

// IsManifestError reports whether err carries manifest problems.
func IsManifestError(err error) bool {
	var me *ManifestError
	return errors.As(err, &me)
}
