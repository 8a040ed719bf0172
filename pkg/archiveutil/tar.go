package archiveutil

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"github.com/go-logr/logr"
	"io"
	"path"
	"slices"
)

var ErrNotFound = errors.New("file not found in archive")

// MaxFileSize caps how much of a single tar entry ReadFile will
// load into memory.
const MaxFileSize = 16 << 20

// ReadFile returns the content of the first regular file in the
// tar stream r whose cleaned name matches one of names.
func ReadFile(ctx context.Context, r io.Reader, names ...string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx)
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil, fmt.Errorf("%w: %v", ErrNotFound, names)
		case err != nil:
			log.V(3).Info("failed to read file from archive", "err", err.Error())
			return nil, fmt.Errorf("reading tar: %w", err)
		case header == nil:
			continue
		}

		if header.Typeflag != tar.TypeReg || !slices.Contains(names, path.Clean(header.Name)) {
			log.V(6).Info("skipping archive entry", "name", header.Name)
			continue
		}
		if header.Size > MaxFileSize {
			return nil, fmt.Errorf("%s is too large (%d bytes)", header.Name, header.Size)
		}
		log.V(5).Info("reading file", "name", header.Name, "size", header.Size)
		data, err := io.ReadAll(io.LimitReader(tr, MaxFileSize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		return data, nil
	}
}
