package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"detox/internal/modules/recognizer/domain"
	recognizerout "detox/internal/modules/recognizer/port/out"

	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Recognizers []domain.Manifest `yaml:"recognizers"`
}

// FileManifestStore reads recognizers from a YAML file. Relative binaries resolve against the file's directory.
type FileManifestStore struct {
	path string
}

func NewFileManifestStore(path string) recognizerout.ManifestStore {
	return &FileManifestStore{path: path}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read recognizer manifest: %w", err)
	}
	var file manifestFile
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode recognizer manifest: %w", err)
	}
	base := filepath.Dir(s.path)
	manifests := file.Recognizers
	if manifests == nil {
		manifests = []domain.Manifest{}
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(base, manifests[i].Binary))
		}
	}
	return manifests, nil
}
