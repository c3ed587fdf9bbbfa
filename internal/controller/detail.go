package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/model"
)

// DetailAPI is the part of the extraction service the detail view needs.
type DetailAPI interface {
	Get(ctx context.Context, id string) (*model.Extraction, error)
	Verify(ctx context.Context, id string) (*model.Extraction, error)
	Beruf(ctx context.Context, id string, index int) (*model.Beruf, error)
}

// DetailState is a snapshot of the detail view. Data is shared with the
// controller and must be treated as read-only.
type DetailState struct {
	Data      *model.Extraction
	ID        string
	Error     string
	Loading   bool
	Verifying bool
}

// DetailController drives the view of a single extraction.
type DetailController struct {
	api       DetailAPI
	logger    *slog.Logger
	state     DetailState
	loadSeq   uint64
	verifySeq uint64
	mu        sync.Mutex
	closed    bool
}

// NewDetailController creates a detail controller with nothing loaded.
func NewDetailController(client DetailAPI, logger *slog.Logger) *DetailController {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailController{api: client, logger: logger}
}

// State returns the current state.
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the extraction id. Previous data and errors are cleared first,
// so a failed load leaves Data nil.
func (c *DetailController) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.loadSeq++
	token := c.loadSeq
	c.state = DetailState{ID: id, Loading: true}
	c.mu.Unlock()

	extraction, err := c.api.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.loadSeq {
		c.logger.Debug("discarding stale detail result", "id", id, "token", token)
		return err
	}

	c.state.Loading = false
	if err != nil {
		c.state.Error = common.DisplayMessage(err, "failed to load extraction")
		return err
	}
	c.state.Data = extraction
	return nil
}

// Verify runs a verification pass on the loaded id. The returned extraction
// replaces Data entirely; on failure Data is left untouched. A successful pass
// supersedes a load of the same id that is still in flight.
func (c *DetailController) Verify(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	id := c.state.ID
	if id == "" {
		c.mu.Unlock()
		return common.ErrNoExtraction
	}
	c.verifySeq++
	token := c.verifySeq
	c.state.Verifying = true
	c.state.Error = ""
	c.mu.Unlock()

	extraction, err := c.api.Verify(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.verifySeq || c.state.ID != id {
		c.logger.Debug("discarding stale verify result", "id", id, "token", token)
		return err
	}

	c.state.Verifying = false
	if err != nil {
		c.state.Error = common.DisplayMessage(err, "verification failed")
		return err
	}
	c.state.Data = extraction
	c.loadSeq++
	c.state.Loading = false
	c.logger.Debug("extraction verified", "id", id, "status", extraction.Status())
	return nil
}

// Beruf fetches a single Beruf of the loaded extraction. It does not change the state.
func (c *DetailController) Beruf(ctx context.Context, index int) (*model.Beruf, error) {
	c.mu.Lock()
	id := c.state.ID
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if id == "" {
		return nil, common.ErrNoExtraction
	}
	return c.api.Beruf(ctx, id, index)
}

// Close discards every completion that arrives afterwards.
func (c *DetailController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
