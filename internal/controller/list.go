// Package controller holds the lifecycle state behind each extraction view.
//
// Controllers never retry and never return partially applied state. Each
// initiated operation takes a token; a completion is applied only when it is
// still the latest for its slot and the controller has not been closed.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/model"
)

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("controller closed")

// ListAPI is the part of the extraction service the list view needs.
type ListAPI interface {
	List(ctx context.Context) ([]model.ExtractionSummary, error)
	Delete(ctx context.Context, id string) error
}

// ListState is a snapshot of the list view.
type ListState struct {
	Error   string
	Items   []model.ExtractionSummary
	Loading bool
}

// ListController drives the extraction list.
type ListController struct {
	api    ListAPI
	logger *slog.Logger
	state  ListState
	seq    uint64
	mu     sync.Mutex
	closed bool
}

// NewListController creates a list controller with no items loaded.
func NewListController(client ListAPI, logger *slog.Logger) *ListController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListController{api: client, logger: logger}
}

// State returns a copy of the current state.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Items = slices.Clone(c.state.Items)
	return s
}

// Refresh reloads all summaries. On success the items are replaced wholesale;
// on failure the last loaded items stay in place and the error is recorded.
func (c *ListController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.seq++
	token := c.seq
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	items, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.seq {
		c.logger.Debug("discarding stale list result", "token", token)
		return err
	}

	c.state.Loading = false
	if err != nil {
		c.state.Error = common.DisplayMessage(err, "failed to load extractions")
		return err
	}
	if items == nil {
		items = []model.ExtractionSummary{}
	}
	c.state.Items = items
	return nil
}

// Remove deletes id on the server and, once confirmed, drops it from the
// local items without refetching. A failed delete leaves the items as they were.
// A confirmed delete supersedes every refresh still in flight, since their
// snapshots may predate it.
func (c *ListController) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Error = ""
	c.mu.Unlock()

	err := c.api.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("discarding delete result after close", "id", id)
		return err
	}

	if err != nil {
		c.state.Error = common.DisplayMessage(err, "failed to delete extraction")
		return err
	}
	c.state.Items = slices.DeleteFunc(slices.Clone(c.state.Items), func(s model.ExtractionSummary) bool {
		return s.ID == id
	})
	c.seq++
	c.state.Loading = false
	c.logger.Debug("extraction removed", "id", id, "remaining", len(c.state.Items))
	return nil
}

// Close discards every completion that arrives afterwards.
func (c *ListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
