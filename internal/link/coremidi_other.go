//go:build !darwin
// +build !darwin

package link

import (
	"fmt"
	"io"

	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// CoreMIDIOpener is unavailable outside macOS; every open fails.
type CoreMIDIOpener struct {
	ClientName string
	Logger     contracts.Logger
}

func (o CoreMIDIOpener) OpenReader(name string) (io.ReadCloser, error) {
	o.Logger.Warn("CoreMIDI endpoint requested on non-macOS system", o.Logger.Field().String("name", name))
	return nil, fmt.Errorf("%w: CoreMIDI source %q", ErrUnsupportedEndpoint, name)
}

func (o CoreMIDIOpener) OpenWriter(name string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("%w: CoreMIDI output %q", ErrUnsupportedEndpoint, name)
}
