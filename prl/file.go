package prl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/katalvlaran/partree/grid"
)

// WriteFile encodes r into the file at path, creating or truncating it.
func WriteFile(path string, r *grid.Raster, opts ...Option) (err error) {
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prl: %w", err)
	}
	defer func() {
		if cerr := fd.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("prl: %w", cerr)
		}
	}()

	w := bufio.NewWriter(fd)
	if err := Encode(w, r, opts...); err != nil {
		return fmt.Errorf("prl: write %s: %w", path, err)
	}
	return w.Flush()
}

// ReadFile decodes the PRL file at path.
func ReadFile(path string) (*grid.Raster, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("prl: %w", err)
	}
	defer fd.Close()

	r, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("prl: read %s: %w", path, err)
	}
	return r, nil
}

// ReadFileHeader returns only the header of the PRL file at path.
func ReadFileHeader(path string) (Header, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("prl: %w", err)
	}
	defer fd.Close()

	h, err := ReadHeader(bufio.NewReader(fd))
	if err != nil {
		return h, fmt.Errorf("prl: read %s: %w", path, err)
	}
	return h, nil
}
