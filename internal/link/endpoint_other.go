//go:build !linux && !darwin

package link

import (
	"io"
	"os"
)

// FileOpener opens endpoints through the os package on platforms without
// raw descriptor support.
type FileOpener struct{}

func (FileOpener) OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (FileOpener) OpenWriter(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}
