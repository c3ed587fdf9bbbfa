package tui

import "github.com/Veraticus/zentrum/internal/controller"

// listUpdatedMsg is sent after the list controller finished a refresh or removal.
type listUpdatedMsg struct {
	err error
}

// detailUpdatedMsg is sent after a detail controller finished a load or verify.
// Messages from a controller that is no longer shown are ignored.
type detailUpdatedMsg struct {
	err    error
	detail *controller.DetailController
}
