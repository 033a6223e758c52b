package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"detox/internal/modules/recognizer/domain"
	"detox/internal/modules/recognizer/dto"
	recognizerout "detox/internal/modules/recognizer/port/out"
	apperrors "detox/internal/platform/errors"
)

type RecognizerService struct {
	store recognizerout.ManifestStore
	host  recognizerout.Host
}

func NewRecognizerService(store recognizerout.ManifestStore, host recognizerout.Host) *RecognizerService {
	return &RecognizerService{store: store, host: host}
}

func (s *RecognizerService) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecognizerInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.RecognizerInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Formats: m.Formats})
	}
	return out, nil
}

func (s *RecognizerService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *RecognizerService) Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error) {
	if input.ImagePath == "" {
		return dto.RecognizeOutput{}, fmt.Errorf("%w: image path is required", apperrors.ErrInvalidInput)
	}
	if !fileExists(input.ImagePath) {
		return dto.RecognizeOutput{}, fmt.Errorf("%w: image %s", apperrors.ErrNotFound, input.ImagePath)
	}
	manifest, err := s.pick(ctx, input.Recognizer, input.ImagePath)
	if err != nil {
		return dto.RecognizeOutput{}, err
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return dto.RecognizeOutput{}, err
	}
	tokens, err := s.host.Recognize(ctx, manifest, input.ImagePath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return dto.RecognizeOutput{}, fmt.Errorf("%w: %s", domain.ErrRecognizerTimeout, manifest.Name)
		}
		return dto.RecognizeOutput{}, err
	}
	return dto.RecognizeOutput{Recognizer: manifest.Name, Tokens: tokens}, nil
}

func (s *RecognizerService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate recognizer name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

// pick returns the named recognizer, or the first enabled one that supports imagePath.
func (s *RecognizerService) pick(ctx context.Context, name, imagePath string) (domain.Manifest, error) {
	if s.host == nil {
		return domain.Manifest{}, fmt.Errorf("%w: no recognizer host configured", apperrors.ErrRecognizer)
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, m := range manifests {
		if name != "" && m.Name != name {
			continue
		}
		if !m.Enabled {
			if name != "" {
				return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrRecognizerDisabled, name)
			}
			continue
		}
		if !m.Supports(imagePath) {
			if name != "" {
				return domain.Manifest{}, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, filepath.Ext(imagePath), name)
			}
			continue
		}
		return m, nil
	}
	if name != "" {
		return domain.Manifest{}, fmt.Errorf("%w: recognizer %q", apperrors.ErrNotFound, name)
	}
	return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(imagePath))
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read recognizer binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
