package index

import (
	"context"
	"fmt"
	"github.com/djcass44/debscan/pkg/archiveutil"
	"github.com/djcass44/debscan/pkg/debian"
	"github.com/go-logr/logr"
	"io"
	"os"
	"path/filepath"
	"pault.ag/go/debian/control"
)

// Entry is a single record of an existing Packages index.
type Entry struct {
	control.Paragraph

	Package      string `required:"true"`
	Version      string `required:"true"`
	Architecture string `required:"true"`
	Maintainer   string
	Depends      []string `delim:", "`
	Filename     string
	Size         int
	MD5sum       string
	SHA1         string
	SHA256       string `control:"SHA256"`
	Description  string
}

// Fields returns every field of the record in the order it was read.
func (e *Entry) Fields() debian.Fields {
	kv := make([]string, 0, len(e.Order)*2)
	for _, k := range e.Order {
		kv = append(kv, k, e.Values[k])
	}
	return debian.NewFields(kv...)
}

// Open reads the index at path. Compressed indexes are
// recognised by their file extension.
func Open(ctx context.Context, path string) ([]Entry, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	suffix := filepath.Ext(path)
	if _, ok := archiveutil.LookupCompression(suffix); !ok {
		suffix = ""
	}
	log.V(2).Info("opening index", "compression", suffix)

	r, err := archiveutil.Decompress(f, suffix)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Read(logr.NewContext(ctx, log), r)
}

// Read decodes every record in r.
func Read(ctx context.Context, r io.Reader) ([]Entry, error) {
	log := logr.FromContextOrDiscard(ctx)

	// Packages files aren't signed
	dec, err := control.NewDecoder(r, nil)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var out []Entry
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	log.V(1).Info("successfully decoded index", "count", len(out))
	return out, nil
}
