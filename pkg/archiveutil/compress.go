package archiveutil

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
	"io"
	"slices"
	"sync"
)

var (
	ErrUnsupportedCompression = errors.New("unsupported compression")
	ErrReadOnlyCompression    = errors.New("compression cannot be written")
)

// Compression knows how to decode (and optionally encode) a stream
// identified by a filename suffix such as ".xz".
type Compression struct {
	Suffix    string
	NewReader func(r io.Reader) (io.ReadCloser, error)
	// NewWriter may be nil if the format can only be read.
	NewWriter func(w io.Writer) (io.WriteCloser, error)
}

var (
	compressionMu sync.RWMutex
	compressions  = map[string]Compression{}
)

func init() {
	RegisterCompression(Compression{
		Suffix: "",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return nopWriteCloser{w}, nil
		},
	})
	RegisterCompression(Compression{
		Suffix: ".gz",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.BestCompression)
		},
	})
	RegisterCompression(Compression{
		Suffix: ".xz",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			reader, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(reader), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	})
	RegisterCompression(Compression{
		Suffix: ".zst",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	})
	RegisterCompression(Compression{
		Suffix: ".lzma",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			reader, err := lzma.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(reader), nil
		},
	})
	RegisterCompression(Compression{
		Suffix: ".bz2",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(bzip2.NewReader(r)), nil
		},
	})
}

// RegisterCompression adds c to the set of known formats,
// replacing any existing entry with the same suffix.
func RegisterCompression(c Compression) {
	compressionMu.Lock()
	defer compressionMu.Unlock()
	compressions[c.Suffix] = c
}

// LookupCompression returns the format registered for suffix.
func LookupCompression(suffix string) (Compression, bool) {
	compressionMu.RLock()
	defer compressionMu.RUnlock()
	c, ok := compressions[suffix]
	return c, ok
}

// Suffixes returns every registered suffix in sorted order.
func Suffixes() []string {
	compressionMu.RLock()
	defer compressionMu.RUnlock()
	out := make([]string, 0, len(compressions))
	for k := range compressions {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Decompress wraps r with the decoder registered for suffix.
func Decompress(r io.Reader, suffix string) (io.ReadCloser, error) {
	c, ok := LookupCompression(suffix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, suffix)
	}
	rc, err := c.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening %q stream: %w", suffix, err)
	}
	return rc, nil
}

// Compress wraps w with the encoder registered for suffix. The
// returned writer must be closed to flush the stream.
func Compress(w io.Writer, suffix string) (io.WriteCloser, error) {
	c, ok := LookupCompression(suffix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, suffix)
	}
	if c.NewWriter == nil {
		return nil, fmt.Errorf("%w: %q", ErrReadOnlyCompression, suffix)
	}
	return c.NewWriter(w)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
