package index

import (
	"bytes"
	"context"
	"fmt"
	"github.com/djcass44/debscan/pkg/archiveutil"
	"github.com/djcass44/debscan/pkg/debian"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"os"
	"path/filepath"
)

// WriteFile writes the index to path and, for every suffix in
// compress, a compressed copy to path+suffix.
// Each file is written to a temporary sibling first and renamed
// into place so that readers never see a partial index.
func WriteFile(ctx context.Context, path string, pkgs []*debian.Package, compress ...string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	buf := &bytes.Buffer{}
	if err := Write(buf, pkgs); err != nil {
		return err
	}

	// validate everything up front so we don't leave
	// some files behind
	for _, suffix := range compress {
		c, ok := archiveutil.LookupCompression(suffix)
		if !ok {
			return fmt.Errorf("%w: %w: %q", ErrOutputWrite, archiveutil.ErrUnsupportedCompression, suffix)
		}
		if c.NewWriter == nil {
			return fmt.Errorf("%w: %w: %q", ErrOutputWrite, archiveutil.ErrReadOnlyCompression, suffix)
		}
	}

	for _, suffix := range append([]string{""}, compress...) {
		target := path + suffix
		log.V(1).Info("writing index", "target", target, "packages", len(pkgs))
		if err := writeAtomic(target, buf.Bytes(), suffix); err != nil {
			log.Error(err, "failed to write index", "target", target)
			return fmt.Errorf("%w: %s: %w", ErrOutputWrite, target, err)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte, suffix string) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	// no-op once the rename has happened
	defer os.Remove(tmp)

	w, err := archiveutil.Compress(f, suffix)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
