package blender

import (
	_ "embed"
	"errors"
	"fmt"
)

// bridgeScript is the Python program run inside Blender. It reads one JSON
// request per line on stdin and answers with one marked JSON line on stdout.
//
//go:embed bridge.py
var bridgeScript string

// replyMarker prefixes every reply line so Blender's own output can be told
// apart from bridge replies.
const replyMarker = "@@meshforge "

// Bridge ops.
const (
	opImportCollada = "import_collada"
	opImportOBJ     = "import_obj"
	opExportSTL     = "export_stl"
	opObjects       = "objects"
	opSelect        = "select"
	opDeselectAll   = "deselect_all"
	opSetRotation   = "set_rotation"
	opList          = "list"
	opRemove        = "remove"
	opQuit          = "quit"
)

// Bridge errors.
var (
	ErrClosed       = errors.New("blender session closed")
	ErrBridgeExited = errors.New("blender bridge exited")
	ErrProtocol     = errors.New("blender bridge protocol error")
)

// HostError is a failure reported by Blender while running an op.
type HostError struct {
	Op      string
	Message string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("blender %s: %s", e.Op, e.Message)
}

type request struct {
	ID            uint64      `json:"id"`
	Op            string      `json:"op"`
	Path          string      `json:"path,omitempty"`
	Name          string      `json:"name,omitempty"`
	Category      string      `json:"category,omitempty"`
	Selected      bool        `json:"selected,omitempty"`
	SelectionOnly bool        `json:"selection_only,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	Rotation      *[3]float64 `json:"rotation,omitempty"`
}

type response struct {
	ID    uint64   `json:"id"`
	OK    bool     `json:"ok"`
	Error string   `json:"error,omitempty"`
	Names []string `json:"names,omitempty"`
}
