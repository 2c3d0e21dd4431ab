// Package msgs defines the bubbletea messages the viewer panels exchange.
package msgs

import (
	"time"

	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Panel focus targets
type PanelFocus int

const (
	FocusRequests PanelFocus = iota
	FocusDetail
)

func (p PanelFocus) String() string {
	switch p {
	case FocusRequests:
		return "REQUESTS"
	case FocusDetail:
		return "DETAIL"
	default:
		return "UNKNOWN"
	}
}

// FocusPanelMsg requests focus change to a specific panel.
type FocusPanelMsg struct {
	Panel PanelFocus
}

// CycleFocusMsg toggles focus between the two panels.
type CycleFocusMsg struct{}

// SnapshotMsg carries a fresh full snapshot of the request log. Kind is
// "init" for the first snapshot after connecting and "update" afterwards.
type SnapshotMsg struct {
	Kind string
	Logs reqlog.Snapshot
}

// FeedClosedMsg is emitted when the snapshot source ends. Err is nil on an
// orderly shutdown.
type FeedClosedMsg struct {
	Err error
}

// RecordSelectedMsg is emitted when the cursor lands on a record.
type RecordSelectedMsg struct {
	ID string
}

// ReplaySelectedMsg asks for the selected record to be re-issued.
type ReplaySelectedMsg struct{}

// ReplayDoneMsg reports the outcome of sending a replay command.
type ReplayDoneMsg struct {
	ID  string
	Err error
}

// CopyAsCurlMsg asks for the selected record to be copied as a curl command.
type CopyAsCurlMsg struct{}

// CopyDoneMsg reports the outcome of a clipboard copy.
type CopyDoneMsg struct {
	Err error
}

// ClearLogMsg asks for the request log to be emptied.
type ClearLogMsg struct{}

// ShowHelpMsg toggles the help overlay.
type ShowHelpMsg struct{}

// ToastMsg shows a toast notification.
type ToastMsg struct {
	Text     string
	Duration time.Duration
	IsError  bool
}
