package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-telemetry/internal/projects/core/domain"
	"event-telemetry/internal/projects/core/ports"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeProjectReader struct {
	GetByAPIKeyFn func(ctx context.Context, apiKey string) (*domain.Project, error)
	GetProjectFn  func(ctx context.Context, projectID string) (*domain.Project, error)
	calls         int
}

func (f *fakeProjectReader) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Project, error) {
	f.calls++
	if f.GetByAPIKeyFn != nil {
		return f.GetByAPIKeyFn(ctx, apiKey)
	}
	return nil, ports.ErrProjectNotFound
}

func (f *fakeProjectReader) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	f.calls++
	if f.GetProjectFn != nil {
		return f.GetProjectFn(ctx, projectID)
	}
	return nil, ports.ErrProjectNotFound
}

func setupCache(t *testing.T, base ports.ProjectReaderPort) *Cache {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(base, client, time.Minute)
}

func TestCache_ReadThrough(t *testing.T) {
	project := &domain.Project{
		ProjectID:     "proj-1",
		Name:          "Demo",
		APIKey:        "ak_test",
		RetentionDays: 90,
	}
	base := &fakeProjectReader{
		GetByAPIKeyFn: func(ctx context.Context, apiKey string) (*domain.Project, error) {
			if apiKey != "ak_test" {
				return nil, ports.ErrProjectNotFound
			}
			return project, nil
		},
	}
	cache := setupCache(t, base)

	// First lookup misses the cache and hits the base reader.
	got, err := cache.GetByAPIKey(context.Background(), "ak_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProjectID != "proj-1" || got.RetentionDays != 90 {
		t.Fatalf("unexpected project: %+v", got)
	}
	if base.calls != 1 {
		t.Fatalf("expected 1 base call, got %d", base.calls)
	}

	// Second lookup is served from redis.
	got, err = cache.GetByAPIKey(context.Background(), "ak_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProjectID != "proj-1" {
		t.Fatalf("unexpected cached project: %+v", got)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached hit, base called %d times", base.calls)
	}
}

func TestCache_NotFoundIsNotCached(t *testing.T) {
	base := &fakeProjectReader{}
	cache := setupCache(t, base)

	for i := 0; i < 2; i++ {
		_, err := cache.GetByAPIKey(context.Background(), "unknown")
		if !errors.Is(err, ports.ErrProjectNotFound) {
			t.Fatalf("expected ErrProjectNotFound, got %v", err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("expected misses to reach the base reader, got %d calls", base.calls)
	}
}

func TestCache_GetProject(t *testing.T) {
	base := &fakeProjectReader{
		GetProjectFn: func(ctx context.Context, projectID string) (*domain.Project, error) {
			return &domain.Project{ProjectID: projectID, RetentionDays: 30}, nil
		},
	}
	cache := setupCache(t, base)

	got, err := cache.GetProject(context.Background(), "proj-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RetentionDays != 30 {
		t.Fatalf("unexpected project: %+v", got)
	}

	if _, err := cache.GetProject(context.Background(), "proj-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached hit, base called %d times", base.calls)
	}
}

func TestCache_NilClientFallsThrough(t *testing.T) {
	base := &fakeProjectReader{
		GetByAPIKeyFn: func(ctx context.Context, apiKey string) (*domain.Project, error) {
			return &domain.Project{ProjectID: "proj-1"}, nil
		},
	}
	cache := NewCache(base, nil, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetByAPIKey(context.Background(), "ak"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("expected every lookup to reach the base reader, got %d", base.calls)
	}
}
