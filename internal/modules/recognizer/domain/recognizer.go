package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrRecognizerDisabled = errors.New("recognizer is disabled")
	ErrChecksumMismatch   = errors.New("recognizer checksum mismatch")
	ErrUnsupportedFormat  = errors.New("image format not supported")
	ErrRecognizerTimeout  = errors.New("recognizer timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest declares one out-of-process recognizer binary.
type Manifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Binary  string   `yaml:"binary"`
	SHA256  string   `yaml:"sha256"`
	Enabled bool     `yaml:"enabled"`
	Formats []string `yaml:"formats"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("recognizer name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("recognizer version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("recognizer binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("recognizer sha256 must be lowercase 64-char hex")
	}
	if len(m.Formats) == 0 {
		return fmt.Errorf("recognizer formats are required")
	}
	seen := map[string]struct{}{}
	for _, format := range m.Formats {
		format = normalizeFormat(format)
		if format == "" {
			return fmt.Errorf("empty recognizer format")
		}
		if _, ok := seen[format]; ok {
			return fmt.Errorf("duplicate format: %s", format)
		}
		seen[format] = struct{}{}
	}
	return nil
}

// Supports reports whether the file extension of imagePath is one of m.Formats.
func (m Manifest) Supports(imagePath string) bool {
	ext := normalizeFormat(filepath.Ext(imagePath))
	for _, format := range m.Formats {
		if normalizeFormat(format) == ext {
			return true
		}
	}
	return false
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

type Metadata struct {
	Name    string
	Version string
	Formats []string
}

// Text is the ordered text fragments read from one image.
type Text struct {
	Recognizer string
	Tokens     []string
}
