package out

import (
	"context"

	"detox/internal/modules/recognizer/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Recognize(ctx context.Context, manifest domain.Manifest, imagePath string) ([]string, error)
}
