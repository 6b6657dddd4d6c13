package repository

import (
	"context"

	"github.com/spec-kit/manday-tracker/internal/persistence"
)

const sheetURLKey = "google-sheet-url"

// SettingsRepository stores operator settings under fixed keys.
type SettingsRepository interface {
	SheetURL(ctx context.Context) (string, error)
	SetSheetURL(ctx context.Context, url string) error
}

type settingsRepository struct {
	kv persistence.KV
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(kv persistence.KV) SettingsRepository {
	return &settingsRepository{kv: kv}
}

// SheetURL returns the configured spreadsheet URL, empty when unset.
func (r *settingsRepository) SheetURL(ctx context.Context) (string, error) {
	value, err := r.kv.Get(ctx, sheetURLKey)
	if err != nil {
		if err == persistence.ErrKeyNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *settingsRepository) SetSheetURL(ctx context.Context, url string) error {
	return r.kv.Set(ctx, sheetURLKey, url)
}
