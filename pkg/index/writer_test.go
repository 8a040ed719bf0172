package index

import (
	"bytes"
	"context"
	"errors"
	"github.com/djcass44/debscan/internal/debtest"
	"github.com/djcass44/debscan/pkg/debian"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	pkg := &debian.Package{
		Fields: debian.NewFields(
			"Description", "a thing\nthat does stuff\n.\n more",
			"Version", "1.0",
			"Zebra", "z",
			"Package", "foo",
			"Homepage", "https://example.org",
			"Architecture", "amd64",
			"SHA256", "abc",
			"Conffiles", "\n/etc/foo 123",
			"Maintainer", "Jane <jane@example.org>",
		),
	}
	want := `Package: foo
Version: 1.0
Architecture: amd64
Maintainer: Jane <jane@example.org>
SHA256: abc
Description: a thing
 that does stuff
 .
  more
Conffiles:
 /etc/foo 123
Homepage: https://example.org
Zebra: z

`
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, []*debian.Package{pkg}))
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, nil))
	assert.Empty(t, buf.String())
}

func TestWrite_RecordSeparators(t *testing.T) {
	pkgs := []*debian.Package{
		{Fields: debian.NewFields("Package", "a", "Version", "1", "Architecture", "all")},
		{Fields: debian.NewFields("Package", "b", "Version", "2", "Architecture", "all")},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, pkgs))
	assert.EqualValues(t, "Package: a\nVersion: 1\nArchitecture: all\n\nPackage: b\nVersion: 2\nArchitecture: all\n\n", buf.String())
}

func TestSortedKeys(t *testing.T) {
	f := debian.NewFields(
		"b", "", "SHA1", "", "a", "", "Filename", "", "Section", "", "Package", "", "Installed-Size", "",
	)
	assert.EqualValues(t, []string{"Package", "Filename", "SHA1", "Section", "Installed-Size", "a", "b"}, SortedKeys(f))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWrite_Error(t *testing.T) {
	pkg := &debian.Package{Fields: debian.NewFields("Package", "foo", "Description", strings.Repeat("x", 8192))}
	err := Write(failingWriter{}, []*debian.Package{pkg})
	assert.ErrorIs(t, err, ErrOutputWrite)
}

// TestWrite_RoundTrip scans real archives, writes the index and reads it
// back with an independent parser.
func TestWrite_RoundTrip(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	debtest.WriteFile(t, root, "foo.deb", debtest.Deb(t, debtest.Control("foo", "1:2.3-1", "amd64",
		"Maintainer: Jane <jane@example.org>",
		"Depends: libc6 (>= 2.34), bar",
		"Installed-Size: 12",
		"Description: does foo\n Foo is a package\n that is long.",
	), ".xz"))
	debtest.WriteFile(t, root, "bar.deb", debtest.Deb(t, debtest.Control("bar", "0.1", "all"), ".zst"))

	res, err := Build(ctx, root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Packages, 2)

	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, res.Packages))

	entries, err := Read(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, entries, len(res.Packages))

	for i, e := range entries {
		p := res.Packages[i]
		assert.EqualValues(t, p.Name(), e.Package)
		assert.EqualValues(t, p.Version(), e.Version)
		assert.EqualValues(t, p.Architecture(), e.Architecture)
		assert.EqualValues(t, p.Filename, e.Filename)
		assert.EqualValues(t, p.Size, e.Size)
		assert.EqualValues(t, p.MD5, e.MD5sum)
		assert.EqualValues(t, p.SHA1, e.SHA1)
		assert.EqualValues(t, p.SHA256, e.SHA256)
		assert.ElementsMatch(t, p.Fields.Keys(), e.Order)
		assert.EqualValues(t, SortedKeys(p.Fields), e.Order)
	}

	// bar sorts before foo on disk
	assert.EqualValues(t, []string{"libc6 (>= 2.34)", "bar"}, entries[1].Depends)
	assert.EqualValues(t, []string{"does foo", "Foo is a package", "that is long."}, trimLines(entries[1].Description))

	// our own parser reads every stanza back unchanged
	for i, stanza := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n\n") {
		f, err := debian.ParseControl([]byte(stanza))
		require.NoError(t, err)
		if diff := cmp.Diff(fieldMap(res.Packages[i].Fields), fieldMap(f)); diff != "" {
			t.Errorf("stanza %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func fieldMap(f debian.Fields) map[string]string {
	out := map[string]string{}
	for _, k := range f.Keys() {
		out[k], _ = f.Get(k)
	}
	return out
}

func trimLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
