package midi

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Default location of raw MIDI device nodes.
const (
	DefaultDeviceDir    = "/dev"
	DefaultDevicePrefix = "midi"
)

// ListDevices lists the non-directory entries of dir whose names start with
// prefix, such as /dev/midi1, sorted by path.
//
// Returns:
//   - []string: The matching paths, possibly empty.
//   - error: An error if dir cannot be read.
func ListDevices(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var devices []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		devices = append(devices, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(devices)
	return devices, nil
}
