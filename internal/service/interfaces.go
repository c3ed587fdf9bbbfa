// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/Veraticus/zentrum/internal/settings"
)

// Extractions is the contract of the remote extraction service.
type Extractions interface {
	// Lifecycle operations
	Upload(ctx context.Context, file api.File) (model.ExtractionSummary, error)
	List(ctx context.Context) ([]model.ExtractionSummary, error)
	Get(ctx context.Context, id string) (*model.Extraction, error)
	Verify(ctx context.Context, id string) (*model.Extraction, error)
	Delete(ctx context.Context, id string) error

	// Beruf access
	Berufe(ctx context.Context, id string) ([]model.Beruf, error)
	Beruf(ctx context.Context, id string, index int) (*model.Beruf, error)
}

// Settings is the contract of the local settings store.
type Settings interface {
	Load(ctx context.Context) model.AppSettings
	Save(ctx context.Context, s model.AppSettings) error
	Clear(ctx context.Context) error
	Current() model.AppSettings
	HasAPIKey() bool
}

// Compile-time interface checks.
var (
	_ Extractions = (*api.Client)(nil)
	_ Settings    = (*settings.Store)(nil)
)
