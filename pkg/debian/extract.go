package debian

import (
	"context"
	"errors"
	"fmt"
	"github.com/djcass44/debscan/pkg/archiveutil"
	"github.com/go-logr/logr"
	"io"
	"os"
	"path/filepath"
)

// ControlFile is the name of the metadata file inside the
// control archive.
const ControlFile = "control"

// ExtractControl decompresses a control archive using the codec
// registered for suffix and parses the control file inside it.
func ExtractControl(ctx context.Context, r io.Reader, suffix string) (Fields, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("suffix", suffix)

	rc, err := archiveutil.Decompress(r, suffix)
	if err != nil {
		if errors.Is(err, archiveutil.ErrUnsupportedCompression) {
			return Fields{}, err
		}
		log.V(3).Info("failed to open control archive", "err", err.Error())
		return Fields{}, fmt.Errorf("%w: %w", ErrControlParse, err)
	}
	defer rc.Close()

	data, err := archiveutil.ReadFile(ctx, rc, ControlFile)
	if err != nil {
		log.V(3).Info("failed to read control file", "err", err.Error())
		return Fields{}, fmt.Errorf("%w: %w", ErrControlParse, err)
	}
	log.V(5).Info("read control file", "bytes", len(data))
	return ParseControl(data)
}

// ReadControl opens the package archive at path and returns
// the fields of its control file.
func ReadControl(ctx context.Context, path string) (Fields, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Fields{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Fields{}, err
	}

	ar, err := archiveutil.NewReader(f, info.Size())
	if err != nil {
		return Fields{}, err
	}
	member, suffix, err := archiveutil.OpenControl(ctx, ar)
	if err != nil {
		return Fields{}, err
	}
	log.V(4).Info("found control archive", "name", member.Name, "size", member.Size)

	return ExtractControl(logr.NewContext(ctx, log), member, suffix)
}
