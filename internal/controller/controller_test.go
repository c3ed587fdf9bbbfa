package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a scriptable extraction service. Each hook may block to
// simulate slow responses.
type fakeAPI struct {
	listFn   func(ctx context.Context) ([]model.ExtractionSummary, error)
	deleteFn func(ctx context.Context, id string) error
	getFn    func(ctx context.Context, id string) (*model.Extraction, error)
	verifyFn func(ctx context.Context, id string) (*model.Extraction, error)
	berufFn  func(ctx context.Context, id string, index int) (*model.Beruf, error)
	uploadFn func(ctx context.Context, file api.File) (model.ExtractionSummary, error)
	calls    []string
	mu       sync.Mutex
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) List(ctx context.Context) ([]model.ExtractionSummary, error) {
	f.record("list")
	return f.listFn(ctx)
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.record("delete " + id)
	return f.deleteFn(ctx, id)
}

func (f *fakeAPI) Get(ctx context.Context, id string) (*model.Extraction, error) {
	f.record("get " + id)
	return f.getFn(ctx, id)
}

func (f *fakeAPI) Verify(ctx context.Context, id string) (*model.Extraction, error) {
	f.record("verify " + id)
	return f.verifyFn(ctx, id)
}

func (f *fakeAPI) Beruf(ctx context.Context, id string, index int) (*model.Beruf, error) {
	f.record("beruf " + id)
	return f.berufFn(ctx, id, index)
}

func (f *fakeAPI) Upload(ctx context.Context, file api.File) (model.ExtractionSummary, error) {
	f.record("upload " + file.Name)
	return f.uploadFn(ctx, file)
}

func summaries(ids ...string) []model.ExtractionSummary {
	out := make([]model.ExtractionSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.ExtractionSummary{ID: id, SourceFileName: id + ".pdf"})
	}
	return out
}

func ids(items []model.ExtractionSummary) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func httpError(status int, message string) error {
	return &api.Error{Op: "test", Kind: api.KindHTTP, StatusCode: status, Message: message}
}

func TestListController_Refresh(t *testing.T) {
	responses := [][]model.ExtractionSummary{summaries("a", "b", "c"), summaries("c", "d")}
	call := 0
	fake := &fakeAPI{listFn: func(context.Context) ([]model.ExtractionSummary, error) {
		r := responses[call]
		call++
		return r, nil
	}}
	c := NewListController(fake, nil)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, []string{"a", "b", "c"}, ids(c.State().Items))

	require.NoError(t, c.Refresh(ctx))
	state := c.State()
	assert.Equal(t, []string{"c", "d"}, ids(state.Items))
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestListController_RefreshFailureKeepsItems(t *testing.T) {
	fail := false
	fake := &fakeAPI{listFn: func(context.Context) ([]model.ExtractionSummary, error) {
		if fail {
			return nil, httpError(503, "Service Unavailable")
		}
		return summaries("a", "b"), nil
	}}
	c := NewListController(fake, nil)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	fail = true
	require.Error(t, c.Refresh(ctx))

	state := c.State()
	assert.Equal(t, []string{"a", "b"}, ids(state.Items))
	assert.Equal(t, "Service Unavailable", state.Error)
	assert.False(t, state.Loading)

	// A successful refresh clears the error.
	fail = false
	require.NoError(t, c.Refresh(ctx))
	assert.Empty(t, c.State().Error)
}

func TestListController_Remove(t *testing.T) {
	tests := []struct {
		deleteErr error
		name      string
		id        string
		wantIDs   []string
		wantError string
	}{
		{
			name:    "removes exactly the matching entry",
			id:      "b",
			wantIDs: []string{"a", "c", "d"},
		},
		{
			name:      "unknown id fails without mutation",
			id:        "zzz",
			deleteErr: httpError(404, "Extraction not found: zzz"),
			wantIDs:   []string{"a", "b", "c", "d"},
			wantError: "Extraction not found: zzz",
		},
		{
			name:      "transport failure leaves items",
			id:        "c",
			deleteErr: &api.Error{Op: "delete", Kind: api.KindTransport, Message: "could not reach extraction service"},
			wantIDs:   []string{"a", "b", "c", "d"},
			wantError: "could not reach extraction service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{
				listFn: func(context.Context) ([]model.ExtractionSummary, error) {
					return summaries("a", "b", "c", "d"), nil
				},
				deleteFn: func(context.Context, string) error { return tt.deleteErr },
			}
			c := NewListController(fake, nil)
			ctx := context.Background()
			require.NoError(t, c.Refresh(ctx))

			err := c.Remove(ctx, tt.id)
			if tt.deleteErr != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			state := c.State()
			assert.Equal(t, tt.wantIDs, ids(state.Items))
			assert.Equal(t, tt.wantError, state.Error)
			// No refetch after delete.
			assert.Equal(t, 2, fake.callCount())
		})
	}
}

func TestListController_StaleRefreshDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var call int
	var mu sync.Mutex
	fake := &fakeAPI{listFn: func(context.Context) ([]model.ExtractionSummary, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return summaries("old"), nil
		}
		return summaries("new"), nil
	}}
	c := NewListController(fake, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	<-started

	require.NoError(t, c.Refresh(ctx))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"new"}, ids(c.State().Items))
	assert.False(t, c.State().Loading)
}

func TestListController_RefreshOlderThanRemoveDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var call int
	var mu sync.Mutex
	fake := &fakeAPI{
		listFn: func(context.Context) ([]model.ExtractionSummary, error) {
			mu.Lock()
			call++
			n := call
			mu.Unlock()
			if n == 2 {
				close(started)
				<-release
			}
			return summaries("a", "b", "c"), nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
	c := NewListController(fake, nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	<-started
	assert.True(t, c.State().Loading)

	require.NoError(t, c.Remove(ctx, "b"))
	assert.Equal(t, []string{"a", "c"}, ids(c.State().Items))
	assert.False(t, c.State().Loading)

	close(release)
	require.NoError(t, <-done)

	state := c.State()
	assert.Equal(t, []string{"a", "c"}, ids(state.Items))
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestListController_Close(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{listFn: func(context.Context) ([]model.ExtractionSummary, error) {
		close(started)
		<-release
		return summaries("a"), nil
	}}
	c := NewListController(fake, nil)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-started

	c.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, c.State().Items)
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrClosed)
}

func detailFixture(id string, berufe ...string) *model.Extraction {
	e := &model.Extraction{
		ID:             id,
		SourceFileName: "report.pdf",
		ExtractedAt:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	for _, b := range berufe {
		e.Berufe = append(e.Berufe, model.Beruf{Beschreibung: b})
	}
	return e
}

func TestDetailController_Load(t *testing.T) {
	fake := &fakeAPI{getFn: func(_ context.Context, id string) (*model.Extraction, error) {
		if id == "abc123" {
			return detailFixture(id, "one", "two", "three"), nil
		}
		return nil, httpError(404, "Extraction not found: "+id)
	}}
	c := NewDetailController(fake, nil)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, "abc123"))
	state := c.State()
	require.NotNil(t, state.Data)
	assert.Len(t, state.Data.Berufe, 3)
	assert.Equal(t, model.StatusUnverified, state.Data.Status())
	assert.False(t, state.Loading)

	// Loading a missing id drops the previous data.
	err := c.Load(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	state = c.State()
	assert.Nil(t, state.Data)
	assert.Equal(t, "Extraction not found: missing", state.Error)
	assert.Equal(t, "missing", state.ID)
}

func TestDetailController_VerifyReplacesData(t *testing.T) {
	verified := detailFixture("abc123", "changed")
	verified.Verification = &model.VerificationResult{
		Valid: false,
		Issues: []model.VerificationIssue{
			{Severity: model.SeverityError, Field: "berufe[0].termin.dauer", Message: "negative duration"},
		},
		VerifiedAt: time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
	}
	fake := &fakeAPI{
		getFn: func(_ context.Context, id string) (*model.Extraction, error) {
			return detailFixture(id, "one", "two", "three"), nil
		},
		verifyFn: func(context.Context, string) (*model.Extraction, error) { return verified, nil },
	}
	c := NewDetailController(fake, nil)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, "abc123"))
	require.NoError(t, c.Verify(ctx))

	state := c.State()
	assert.Equal(t, verified, state.Data)
	assert.Equal(t, model.StatusInvalid, state.Data.Status())
	assert.Len(t, state.Data.Berufe, 1)
	assert.False(t, state.Verifying)
}

func TestDetailController_VerifyFailureKeepsData(t *testing.T) {
	fake := &fakeAPI{
		getFn: func(_ context.Context, id string) (*model.Extraction, error) {
			return detailFixture(id, "one", "two"), nil
		},
		verifyFn: func(context.Context, string) (*model.Extraction, error) {
			return nil, httpError(502, "upstream model unavailable")
		},
	}
	c := NewDetailController(fake, nil)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, "abc123"))
	before := c.State()

	require.Error(t, c.Verify(ctx))
	after := c.State()

	assert.Same(t, before.Data, after.Data)
	assert.Equal(t, detailFixture("abc123", "one", "two"), after.Data)
	assert.Equal(t, "upstream model unavailable", after.Error)
	assert.False(t, after.Verifying)
}

func TestDetailController_VerifyWithoutID(t *testing.T) {
	fake := &fakeAPI{}
	c := NewDetailController(fake, nil)

	err := c.Verify(context.Background())
	assert.ErrorIs(t, err, common.ErrNoExtraction)
	assert.Equal(t, 0, fake.callCount())

	_, err = c.Beruf(context.Background(), 0)
	assert.ErrorIs(t, err, common.ErrNoExtraction)
}

func TestDetailController_StaleLoadDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{getFn: func(_ context.Context, id string) (*model.Extraction, error) {
		if id == "first" {
			close(started)
			<-release
		}
		return detailFixture(id, id), nil
	}}
	c := NewDetailController(fake, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Load(ctx, "first") }()
	<-started

	require.NoError(t, c.Load(ctx, "second"))
	close(release)
	require.NoError(t, <-done)

	state := c.State()
	require.NotNil(t, state.Data)
	assert.Equal(t, "second", state.Data.ID)
	assert.Equal(t, "second", state.ID)
}

func TestDetailController_LoadOlderThanVerifyDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	verified := detailFixture("abc123", "verified")
	verified.Verification = &model.VerificationResult{Valid: true}
	fake := &fakeAPI{
		getFn: func(context.Context, string) (*model.Extraction, error) {
			close(started)
			<-release
			return nil, errors.New("boom")
		},
		verifyFn: func(context.Context, string) (*model.Extraction, error) { return verified, nil },
	}
	c := NewDetailController(fake, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Load(ctx, "abc123") }()
	<-started

	require.NoError(t, c.Verify(ctx))
	close(release)
	require.Error(t, <-done)

	state := c.State()
	assert.Same(t, verified, state.Data)
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
	assert.False(t, state.Verifying)
}

func TestDetailController_VerifyForPreviousIDDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{
		getFn: func(_ context.Context, id string) (*model.Extraction, error) {
			return detailFixture(id, id), nil
		},
		verifyFn: func(_ context.Context, id string) (*model.Extraction, error) {
			close(started)
			<-release
			return detailFixture(id, "verified"), nil
		},
	}
	c := NewDetailController(fake, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, "first"))

	done := make(chan error, 1)
	go func() { done <- c.Verify(ctx) }()
	<-started

	require.NoError(t, c.Load(ctx, "second"))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "second", c.State().Data.ID)
}

func TestDetailController_CloseDisposesResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{getFn: func(_ context.Context, id string) (*model.Extraction, error) {
		close(started)
		<-release
		return detailFixture(id), nil
	}}
	c := NewDetailController(fake, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background(), "abc123") }()
	<-started

	c.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Nil(t, c.State().Data)
	assert.True(t, c.State().Loading)
}

func TestDetailController_Beruf(t *testing.T) {
	fake := &fakeAPI{
		getFn: func(_ context.Context, id string) (*model.Extraction, error) {
			return detailFixture(id, "a", "b"), nil
		},
		berufFn: func(_ context.Context, id string, index int) (*model.Beruf, error) {
			assert.Equal(t, "abc123", id)
			if index > 1 {
				return nil, httpError(404, "Beruf index out of range")
			}
			return &model.Beruf{Beschreibung: "b"}, nil
		},
	}
	c := NewDetailController(fake, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, "abc123"))

	b, err := c.Beruf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", b.Beschreibung)

	_, err = c.Beruf(ctx, 7)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, c.State().Error)
}

func TestUploadController_Submit(t *testing.T) {
	var navigated []string
	fake := &fakeAPI{uploadFn: func(_ context.Context, file api.File) (model.ExtractionSummary, error) {
		return model.ExtractionSummary{
			ID:             "abc123",
			SourceFileName: file.Name,
			ExtractedAt:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			BerufeCount:    3,
		}, nil
	}}
	c := NewUploadController(fake, func(id string) { navigated = append(navigated, id) }, nil)

	id, err := c.Submit(context.Background(), api.File{
		Name:        "report.pdf",
		ContentType: api.PDFMediaType,
		Content:     strings.NewReader("%PDF-1.7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, []string{"abc123"}, navigated)

	state := c.State()
	assert.False(t, state.Busy)
	assert.Empty(t, state.Error)
	assert.Equal(t, "abc123", state.LastID)
}

func TestUploadController_RejectsLocally(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		file    api.File
	}{
		{
			name:    "declared non-PDF type",
			file:    api.File{Name: "report.pdf", ContentType: "text/plain", Content: strings.NewReader("x")},
			wantErr: common.ErrNotPDF,
		},
		{
			name:    "extension without declared type",
			file:    api.File{Name: "notes.txt", Content: strings.NewReader("x")},
			wantErr: common.ErrNotPDF,
		},
		{
			name:    "unknown type",
			file:    api.File{Name: "blob", Content: strings.NewReader("x")},
			wantErr: common.ErrNotPDF,
		},
		{
			name:    "no file",
			file:    api.File{},
			wantErr: common.ErrNoFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{}
			navigated := false
			c := NewUploadController(fake, func(string) { navigated = true }, nil)

			_, err := c.Submit(context.Background(), tt.file)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, fake.callCount())
			assert.False(t, navigated)
			assert.NotEmpty(t, c.State().Error)
			assert.False(t, c.State().Busy)
		})
	}
}

func TestUploadController_FailureIsReenterable(t *testing.T) {
	attempts := 0
	fake := &fakeAPI{uploadFn: func(context.Context, api.File) (model.ExtractionSummary, error) {
		attempts++
		if attempts == 1 {
			return model.ExtractionSummary{}, httpError(422, "PDF could not be parsed")
		}
		return model.ExtractionSummary{ID: "abc123"}, nil
	}}
	var navigated []string
	c := NewUploadController(fake, func(id string) { navigated = append(navigated, id) }, nil)
	file := func() api.File {
		return api.File{Name: "report.pdf", ContentType: api.PDFMediaType, Content: strings.NewReader("%PDF")}
	}

	_, err := c.Submit(context.Background(), file())
	require.Error(t, err)
	state := c.State()
	assert.Equal(t, "PDF could not be parsed", state.Error)
	assert.False(t, state.Busy)
	assert.Empty(t, navigated)

	id, err := c.Submit(context.Background(), file())
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Empty(t, c.State().Error)
	assert.Equal(t, []string{"abc123"}, navigated)
}

func TestUploadController_BusyWhileUploading(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{uploadFn: func(context.Context, api.File) (model.ExtractionSummary, error) {
		close(started)
		<-release
		return model.ExtractionSummary{ID: "abc123"}, nil
	}}
	c := NewUploadController(fake, nil, nil)
	file := api.File{Name: "report.pdf", ContentType: api.PDFMediaType, Content: strings.NewReader("%PDF")}

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), file)
		done <- err
	}()
	<-started

	assert.True(t, c.State().Busy)
	_, err := c.Submit(context.Background(), file)
	assert.ErrorIs(t, err, ErrUploadInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().Busy)
}

func TestUploadController_CloseSkipsNavigation(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{uploadFn: func(context.Context, api.File) (model.ExtractionSummary, error) {
		close(started)
		<-release
		return model.ExtractionSummary{ID: "abc123"}, nil
	}}
	navigated := false
	c := NewUploadController(fake, func(string) { navigated = true }, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), api.File{
			Name: "report.pdf", ContentType: api.PDFMediaType, Content: strings.NewReader("%PDF"),
		})
		done <- err
	}()
	<-started

	c.Close()
	close(release)
	require.NoError(t, <-done)
	assert.False(t, navigated)
}

func TestDisplayMessageFallback(t *testing.T) {
	fake := &fakeAPI{listFn: func(context.Context) ([]model.ExtractionSummary, error) {
		return nil, errors.New("boom")
	}}
	c := NewListController(fake, nil)
	require.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, "boom", c.State().Error)
}
