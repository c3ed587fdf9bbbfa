package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/model"
)

// ErrUploadInProgress is returned when a submission arrives while another is running.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// UploadAPI is the part of the extraction service the upload view needs.
type UploadAPI interface {
	Upload(ctx context.Context, file api.File) (model.ExtractionSummary, error)
}

// Navigator is called with the id of a newly created extraction.
type Navigator func(id string)

// UploadState is a snapshot of the upload view.
type UploadState struct {
	Error  string
	LastID string
	Busy   bool
}

// UploadController submits one PDF at a time.
type UploadController struct {
	api      UploadAPI
	navigate Navigator
	logger   *slog.Logger
	state    UploadState
	mu       sync.Mutex
	closed   bool
}

// NewUploadController creates an upload controller. navigate may be nil.
func NewUploadController(client UploadAPI, navigate Navigator, logger *slog.Logger) *UploadController {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadController{api: client, navigate: navigate, logger: logger}
}

// State returns the current state.
func (c *UploadController) State() UploadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit uploads file and returns the new extraction id. Files that are not
// declared as PDF are rejected before any request is made. The controller
// imposes no timeout of its own; Busy stays set until the call returns.
func (c *UploadController) Submit(ctx context.Context, file api.File) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	if c.state.Busy {
		c.mu.Unlock()
		return "", ErrUploadInProgress
	}
	if file.Content == nil || file.Name == "" {
		c.state.Error = common.ErrNoFile.Error()
		c.mu.Unlock()
		return "", common.ErrNoFile
	}
	if !file.IsPDF() {
		err := fmt.Errorf("%s: %w", file.Name, common.ErrNotPDF)
		c.state.Error = common.ErrNotPDF.Error()
		c.mu.Unlock()
		c.logger.Debug("rejected non-PDF upload", "file", file.Name, "media_type", file.MediaType())
		return "", err
	}
	c.state.Busy = true
	c.state.Error = ""
	c.mu.Unlock()

	c.logger.Info("uploading document", "file", file.Name)
	created, err := c.api.Upload(ctx, file)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding upload result after close", "file", file.Name)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}
	c.state.Busy = false
	if err != nil {
		c.state.Error = common.DisplayMessage(err, "upload failed")
		c.mu.Unlock()
		return "", err
	}
	c.state.LastID = created.ID
	navigate := c.navigate
	c.mu.Unlock()

	c.logger.Info("extraction created",
		"id", created.ID,
		"file", created.SourceFileName,
		"berufe", created.BerufeCount)

	if navigate != nil {
		navigate(created.ID)
	}
	return created.ID, nil
}

// Close discards every completion that arrives afterwards.
func (c *UploadController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
