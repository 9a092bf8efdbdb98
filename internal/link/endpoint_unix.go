//go:build linux || darwin

package link

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// FileOpener opens device nodes such as /dev/midi1 or /dev/snd/midiC1D0.
//
// Descriptors are opened non-blocking so the runtime poller owns them and
// Close interrupts a pending Read.
type FileOpener struct{}

func (FileOpener) OpenReader(path string) (io.ReadCloser, error) {
	f, err := openFile(path, unix.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (FileOpener) OpenWriter(path string) (io.WriteCloser, error) {
	f, err := openFile(path, unix.O_WRONLY)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func openFile(path string, mode int) (*os.File, error) {
	fd, err := unix.Open(path, mode|unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
