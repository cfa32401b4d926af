package convert

import (
	"fmt"
	"io"
	"os"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openDestination creates named file or falls back to stdout when name is
// empty. Returned label is suitable for logging.
func openDestination(fname string) (io.WriteCloser, string, error) {
	if len(fname) == 0 {
		return nopCloser{os.Stdout}, "STDOUT", nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, "", fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	return f, fname, nil
}
