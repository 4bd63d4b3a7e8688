package storage

import (
	"context"

	"github.com/hyperjump/kioku/internal/models"
)

// DisabledStorage is the Storage used when the database is turned off in
// config (demo mode). Every operation fails fast with ErrStoreUnavailable
// without attempting any I/O.
type DisabledStorage struct{}

// NewDisabledStorage returns a Storage that rejects every operation.
func NewDisabledStorage() *DisabledStorage {
	return &DisabledStorage{}
}

func (*DisabledStorage) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	return 0, models.ErrStoreUnavailable
}

func (*DisabledStorage) List(ctx context.Context, limit, offset int) ([]models.DocumentSummary, int, error) {
	return nil, 0, models.ErrStoreUnavailable
}

func (*DisabledStorage) FetchAll(ctx context.Context) ([]models.Document, error) {
	return nil, models.ErrStoreUnavailable
}

func (*DisabledStorage) Dimension(ctx context.Context) (int, error) {
	return 0, models.ErrStoreUnavailable
}

func (*DisabledStorage) Count(ctx context.Context) (int, error) {
	return 0, models.ErrStoreUnavailable
}

// Available always reports false.
func (*DisabledStorage) Available() bool { return false }

func (*DisabledStorage) Close() error { return nil }
