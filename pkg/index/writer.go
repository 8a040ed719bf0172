package index

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/djcass44/debscan/pkg/debian"
	"io"
	"slices"
	"strings"
)

var ErrOutputWrite = errors.New("failed to write index")

// KeyOrder is the order in which well-known fields are written.
// Any other field follows in lexical order.
var KeyOrder = []string{
	debian.FieldPackage,
	debian.FieldVersion,
	debian.FieldArchitecture,
	"Maintainer",
	"Depends",
	"Conflicts",
	"Breaks",
	"Replaces",
	debian.FieldFilename,
	debian.FieldSize,
	debian.FieldMD5,
	debian.FieldSHA1,
	debian.FieldSHA256,
	"Section",
	"Description",
}

// Write renders pkgs as a Packages index. Every record is
// followed by a blank line.
func Write(w io.Writer, pkgs []*debian.Package) error {
	bw := bufio.NewWriter(w)
	for _, p := range pkgs {
		if err := writeStanza(bw, p.Fields); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrOutputWrite, p, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

// SortedKeys returns the keys of f in the order they
// should be written.
func SortedKeys(f debian.Fields) []string {
	keys := f.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range KeyOrder {
		if _, ok := f.Get(k); ok {
			out = append(out, k)
		}
	}
	var rest []string
	for _, k := range keys {
		if !slices.Contains(KeyOrder, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func writeStanza(w *bufio.Writer, f debian.Fields) error {
	for _, k := range SortedKeys(f) {
		v, _ := f.Get(k)
		lines := strings.Split(v, "\n")

		_, _ = w.WriteString(k)
		_ = w.WriteByte(':')
		if lines[0] != "" {
			_ = w.WriteByte(' ')
			_, _ = w.WriteString(lines[0])
		}
		_ = w.WriteByte('\n')
		for _, l := range lines[1:] {
			_ = w.WriteByte(' ')
			_, _ = w.WriteString(l)
			_ = w.WriteByte('\n')
		}
	}
	// bufio.Writer errors are sticky, so checking the last write is enough
	return w.WriteByte('\n')
}
