package ports

import (
	"context"
	"errors"

	"event-telemetry/internal/projects/core/domain"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectReaderPort interface {
	// GetByAPIKey resolves an API key to its project. Returns
	// ErrProjectNotFound for unknown keys.
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Project, error)

	// GetProject looks a project up by id. Returns ErrProjectNotFound for
	// unknown ids.
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
}
