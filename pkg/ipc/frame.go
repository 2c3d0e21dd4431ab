// Package ipc lets a separate viewer process observe the request log and
// issue replay and clear commands. The wire protocol is newline-delimited
// JSON over a loopback TCP socket: the server pushes {"type":"init"|"update",
// "logs":[...]} frames, viewers send {"type":"replay","log":{...}} and
// {"type":"clear"}. Unknown or malformed frames are ignored on both sides.
// A discovery file in the user's temp directory points viewers at the
// running instance.
package ipc

import "github.com/reqlens/reqlens/pkg/record"

const (
	frameInit   = "init"
	frameUpdate = "update"
	frameReplay = "replay"
	frameClear  = "clear"
)

// frame is the envelope every message travels in. Logs is set on init and
// update, Log on replay; clear carries the type alone.
type frame struct {
	Type string           `json:"type"`
	Logs []*record.Record `json:"logs,omitempty"`
	Log  *record.Record   `json:"log,omitempty"`
}
