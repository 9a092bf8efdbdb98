package midi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leandrodaf/panelmeter/internal/link"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// Error definitions for endpoint resolution.
var (
	ErrNoInput       = errors.New("no input endpoint configured")
	ErrNoOutput      = errors.New("no output endpoint configured")
	ErrUnknownScheme = errors.New("unknown endpoint scheme")
)

// endpointOpeners maps endpoint schemes to corresponding opener initializers.
// A path without a scheme is opened as a device node.
var endpointOpeners = map[string]func(*contracts.ManagerOptions) link.Opener{
	"":         newFileOpener, // Device nodes such as /dev/snd/midiC1D0.
	"file":     newFileOpener, // Explicit form of the above.
	"coremidi": newCoreMIDIOpener,
}

func newFileOpener(*contracts.ManagerOptions) link.Opener { return link.FileOpener{} }

func newCoreMIDIOpener(opts *contracts.ManagerOptions) link.Opener {
	return link.CoreMIDIOpener{ClientName: opts.CoreMIDIConfig.ClientName, Logger: opts.Logger}
}

// resolveEndpoint splits "scheme:name" and returns the opener for the scheme.
// Anything before the first ':' that contains a '/' is treated as part of a
// plain path.
//
// Returns:
//   - link.Opener: The opener to use for the endpoint.
//   - string: The endpoint name with the scheme removed.
//   - error: ErrUnknownScheme if the scheme has no registered opener.
func resolveEndpoint(opts *contracts.ManagerOptions, path string) (link.Opener, string, error) {
	scheme, name := "", path
	if i := strings.IndexByte(path, ':'); i > 0 && !strings.Contains(path[:i], "/") {
		scheme, name = path[:i], path[i+1:]
	}
	initializer, exists := endpointOpeners[scheme]
	if !exists {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
	return initializer(opts), name, nil
}
