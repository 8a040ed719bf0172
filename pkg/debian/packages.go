package debian

import (
	"context"
	"errors"
	"fmt"
	"github.com/djcass44/debscan/pkg/checksum"
	"github.com/go-logr/logr"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrInvalidPackage = errors.New("invalid package")

// NewPackage reads the archive at root/rel and builds its index
// entry. The Filename field is rel using forward slashes, with
// prefix prepended when set.
func NewPackage(ctx context.Context, root, rel, prefix string) (*Package, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("file", rel)
	ctx = logr.NewContext(ctx, log)

	fullPath := filepath.Join(root, rel)

	control, err := ReadControl(ctx, fullPath)
	if err != nil {
		return nil, err
	}
	sums, err := checksum.File(fullPath)
	if err != nil {
		return nil, err
	}

	filename := filepath.ToSlash(rel)
	if prefix != "" {
		filename = path.Join(strings.TrimSuffix(prefix, "/"), filename)
	}

	p := &Package{
		Fields: control.Merge(NewFields(
			FieldFilename, filename,
			FieldSize, strconv.FormatInt(sums.Size, 10),
			FieldMD5, sums.MD5,
			FieldSHA1, sums.SHA1,
			FieldSHA256, sums.SHA256,
		)),
		Filename:  filename,
		Checksums: sums,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log.V(3).Info("read package", "name", p.Name(), "version", p.Version(), "arch", p.Architecture())
	return p, nil
}

// Validate checks that the fields needed to index the
// package are present and non-empty.
func (p *Package) Validate() error {
	for _, k := range []string{FieldPackage, FieldVersion, FieldArchitecture} {
		if v, _ := p.Fields.Get(k); strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: missing %s field", ErrInvalidPackage, k)
		}
	}
	return nil
}
