package audio

import (
	"fmt"
	"os"
)

// WriteFile writes data to path, creating or truncating it. The file is
// closed on every return path; a close failure is reported only when the
// write itself succeeded.
func WriteFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", ErrIO, path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}

	return nil
}
