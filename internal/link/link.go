// Package link runs one goroutine per MIDI endpoint.
//
// An Input reads raw bytes, frames them and delivers events on a channel
// that is closed when the endpoint reports EOF or an error. An Output drains
// a send queue and writes encoded messages. Neither restarts once stopped.
package link

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// Error definitions for endpoint handling.
var (
	ErrClockTimeout        = errors.New("no clock tick received before timeout")
	ErrClockEOF            = errors.New("clock endpoint closed while waiting for a tick")
	ErrUnsupportedEndpoint = errors.New("endpoint type not supported on this platform")
	ErrEndpointNotFound    = errors.New("endpoint not found")
)

// Opener opens raw byte endpoints.
type Opener interface {
	OpenReader(path string) (io.ReadCloser, error)
	OpenWriter(path string) (io.WriteCloser, error)
}

// InvariantError reports use of a link whose goroutine has already
// terminated. It is raised with panic, never returned.
type InvariantError struct {
	Link contracts.LinkInfo
	Op   string
	Err  error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("link invariant violated: %s on terminated %s link %s (%s)", e.Op, e.Link.Role, e.Link.ID, e.Link.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantError) Unwrap() error { return e.Err }

// NewInfo assigns a fresh id to a link.
func NewInfo(role contracts.LinkRole, path string) contracts.LinkInfo {
	return contracts.LinkInfo{ID: uuid.NewString(), Role: role, Path: path}
}

func linkFields(l contracts.Logger, info contracts.LinkInfo) []contracts.Field {
	return []contracts.Field{
		l.Field().String("link", info.ID),
		l.Field().String("role", string(info.Role)),
		l.Field().String("path", info.Path),
	}
}
