package contracts

import (
	"errors"
	"fmt"
)

// LinkRole describes what a device link is used for.
type LinkRole string

const (
	RoleInput  LinkRole = "input"  // Note and controller data.
	RoleClock  LinkRole = "clock"  // Dedicated timing clock source.
	RoleOutput LinkRole = "output" // Write-only destination.
)

// LinkState is the connection state of a device link.
// A link moves from Connected to Disconnected exactly once.
type LinkState int32

const (
	Connected LinkState = iota
	Disconnected
)

func (s LinkState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// LinkInfo contains information about an open device link.
type LinkInfo struct {
	ID   string   // Unique id assigned when the link is opened.
	Role LinkRole // Role of the link.
	Path string   // Endpoint identifier the link was opened with.
}

// ErrDisconnected is returned by a link manager once any of its links has terminated.
var ErrDisconnected = errors.New("device link disconnected")

// OpenError reports a failure to open a device endpoint.
type OpenError struct {
	Role LinkRole
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open MIDI %s '%s': %v", e.Role, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }
