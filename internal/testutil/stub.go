// Package testutil provides test harnesses shared across zentrum packages.
// It wires the in-process extraction stub to a real API client so tests exercise
// the full HTTP path without leaving the process.
package testutil

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/Veraticus/zentrum/internal/settings"
	"github.com/Veraticus/zentrum/internal/storage"
	"github.com/Veraticus/zentrum/internal/stubserver"
)

// StubService bundles a running stub extraction service with a client bound to it.
type StubService struct {
	Server   *stubserver.Server
	Client   *api.Client
	Settings *settings.Store
	URL      string
}

// NewStubService starts a stub extraction service for the duration of the test.
// The returned client reads its credentials from a fresh settings store.
//
// Example:
//
//	svc := testutil.NewStubService(t)
//	id := svc.Server.Seed(testutil.SampleExtraction("Plan.pdf"))
//	e, err := svc.Client.Get(ctx, id)
func NewStubService(t *testing.T, opts ...stubserver.Option) *StubService {
	t.Helper()

	server := stubserver.New(opts...)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	store := SetupSettings(t)
	client, err := api.NewClient(ts.URL, store)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return &StubService{
		Server:   server,
		Client:   client,
		Settings: store,
		URL:      ts.URL,
	}
}

// SetupSettings returns a loaded settings store backed by a migrated SQLite
// database in the test's temp directory.
func SetupSettings(t *testing.T) *settings.Store {
	t.Helper()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("failed to create settings database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := settings.NewStore(db, nil)
	store.Load(ctx)
	return store
}

// PDF returns an in-memory PDF upload named name.
func PDF(name string) api.File {
	return api.File{
		Content:     strings.NewReader("%PDF-1.7\n" + name + "\n%%EOF\n"),
		Name:        name,
		ContentType: api.PDFMediaType,
	}
}

// SampleExtraction builds an unverified extraction with two Berufe.
func SampleExtraction(fileName string) model.Extraction {
	return model.Extraction{
		SourceFileName: fileName,
		Berufe: []model.Beruf{
			{
				Beschreibung: "Kaufmann/-frau für Büromanagement",
				BerufNr:      []int{1234},
				PruefungsBereich: []model.PruefungsBereich{
					{
						Name: "Informationstechnisches Büromanagement",
						Aufgaben: []model.Aufgabe{
							{
								Name:       "Schriftliche Prüfung",
								Termin:     &model.Termin{Datum: "2025-05-06", UhrzeitVon: "08:00", UhrzeitBis: "10:00", Dauer: 120},
								Hilfmittel: "Taschenrechner",
							},
						},
					},
				},
			},
			{
				Beschreibung: "Industriekaufmann/-frau",
				BerufNr:      []int{5678},
			},
		},
	}
}
