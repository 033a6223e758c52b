package domain_test

import (
	"strings"
	"testing"

	"detox/internal/modules/recognizer/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:    "sidecar",
		Version: "1.0.0",
		Binary:  "/tmp/sidecar",
		SHA256:  strings.Repeat("a", 64),
		Enabled: true,
		Formats: []string{"png", ".JPG"},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("expected valid manifest: %v", err)
	}

	cases := map[string]func(*domain.Manifest){
		"missing name":     func(m *domain.Manifest) { m.Name = "" },
		"missing binary":   func(m *domain.Manifest) { m.Binary = "" },
		"bad checksum":     func(m *domain.Manifest) { m.SHA256 = "ABC" },
		"no formats":       func(m *domain.Manifest) { m.Formats = nil },
		"duplicate format": func(m *domain.Manifest) { m.Formats = []string{"png", ".PNG"} },
	}
	for name, mutate := range cases {
		m := validManifest()
		mutate(&m)
		if err := m.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestManifestSupports(t *testing.T) {
	t.Parallel()
	m := validManifest()
	if !m.Supports("/shots/today.PNG") || !m.Supports("a.jpg") {
		t.Fatalf("expected png and jpg support")
	}
	if m.Supports("notes.txt") || m.Supports("noext") {
		t.Fatalf("unexpected support for txt or missing extension")
	}
}
