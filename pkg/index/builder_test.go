package index

import (
	"context"
	"fmt"
	"github.com/djcass44/debscan/internal/debtest"
	"github.com/djcass44/debscan/pkg/archiveutil"
	"github.com/djcass44/debscan/pkg/debian"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func writeDeb(t *testing.T, dir, filename, name, version, arch string) {
	debtest.WriteFile(t, dir, filename, debtest.Deb(t, debtest.Control(name, version, arch), ".gz"))
}

func versions(pkgs []*debian.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name() + "=" + p.Version()
	}
	return out
}

func TestBuild(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "foo_1.0_amd64.deb", "foo", "1.0", "amd64")
	writeDeb(t, root, "foo_2.0_amd64.deb", "foo", "2.0", "amd64")

	t.Run("newest version wins", func(t *testing.T) {
		res, err := Build(ctx, root, Options{})
		require.NoError(t, err)
		require.Len(t, res.Packages, 1)
		assert.Empty(t, res.Skipped)

		p := res.Packages[0]
		assert.EqualValues(t, "2.0", p.Version())
		v, _ := p.Fields.Get(debian.FieldFilename)
		assert.EqualValues(t, "foo_2.0_amd64.deb", v)
	})
	t.Run("multiversion keeps everything", func(t *testing.T) {
		res, err := Build(ctx, root, Options{Multiversion: true})
		require.NoError(t, err)
		assert.EqualValues(t, []string{"foo=1.0", "foo=2.0"}, versions(res.Packages))
	})
	t.Run("prefix", func(t *testing.T) {
		res, err := Build(ctx, root, Options{Prefix: "pool/main"})
		require.NoError(t, err)
		require.Len(t, res.Packages, 1)
		assert.EqualValues(t, "pool/main/foo_2.0_amd64.deb", res.Packages[0].Filename)
	})
}

func TestBuild_Dedup(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	all := []string{"1.0~rc1", "1.0", "1.0-1", "1:0.5", "2.0", "0.9"}
	r := rand.New(rand.NewPCG(3, 4))
	for i, idx := range r.Perm(len(all)) {
		writeDeb(t, root, fmt.Sprintf("%02d_bar.deb", i), "bar", all[idx], "all")
	}
	writeDeb(t, root, "50_baz.deb", "baz", "1.0", "all")

	res, err := Build(ctx, root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bar=1:0.5", "baz=1.0"}, versions(res.Packages))

	res, err = Build(ctx, root, Options{Multiversion: true})
	require.NoError(t, err)
	assert.Len(t, res.Packages, len(all)+1)
}

func TestBuild_TieKeepsFirst(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "a.deb", "foo", "1.0", "amd64")
	writeDeb(t, root, "b.deb", "foo", "1.00", "amd64")
	writeDeb(t, root, "c.deb", "foo", "0:1.0", "amd64")

	res, err := Build(ctx, root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Packages, 1)
	assert.EqualValues(t, "a.deb", res.Packages[0].Filename)
}

func TestBuild_ReplacementKeepsPosition(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "1.deb", "foo", "1.0", "all")
	writeDeb(t, root, "2.deb", "bar", "1.0", "all")
	writeDeb(t, root, "3.deb", "foo", "3.0", "all")

	res, err := Build(ctx, root, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, []string{"foo=3.0", "bar=1.0"}, versions(res.Packages))
}

func TestBuild_Arch(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "a.deb", "a", "1.0", "amd64")
	writeDeb(t, root, "b.deb", "b", "1.0", "arm64")
	writeDeb(t, root, "c.deb", "c", "1.0", "all")
	writeDeb(t, root, "d.deb", "d", "1.0", "AMD64")

	var cases = []struct {
		arch string
		out  []string
	}{
		{"", []string{"a=1.0", "b=1.0", "c=1.0", "d=1.0"}},
		{"amd64", []string{"a=1.0"}},
		{"all", []string{"c=1.0"}},
		{"i386", []string{}},
	}
	for _, tt := range cases {
		t.Run(tt.arch, func(t *testing.T) {
			res, err := Build(ctx, root, Options{Arch: tt.arch})
			require.NoError(t, err)
			assert.EqualValues(t, tt.out, versions(res.Packages))
		})
	}
}

func TestBuild_Skip(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "good.deb", "good", "1.0", "amd64")
	debtest.WriteFile(t, root, "bad.deb", []byte("definitely not an archive"))
	debtest.WriteFile(t, root, "nameless.deb", debtest.Deb(t, "Version: 1.0\nArchitecture: amd64\n", ""))

	res, err := Build(ctx, root, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, []string{"good=1.0"}, versions(res.Packages))

	require.Len(t, res.Skipped, 2)
	assert.EqualValues(t, "bad.deb", res.Skipped[0].Path)
	assert.ErrorIs(t, res.Skipped[0].Err, archiveutil.ErrArchiveFormat)
	assert.EqualValues(t, "nameless.deb", res.Skipped[1].Path)
	assert.ErrorIs(t, res.Skipped[1].Err, debian.ErrInvalidPackage)
	assert.Contains(t, res.Skipped[0].String(), "bad.deb: ")
}

func TestBuild_Candidates(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	root := t.TempDir()
	writeDeb(t, root, "a.deb", "a", "1.0", "all")
	writeDeb(t, root, ".hidden.deb", "hidden", "1.0", "all")
	writeDeb(t, root, "nested/b.deb", "b", "1.0", "all")
	writeDeb(t, root, "c.udeb", "c", "1.0", "all")
	writeDeb(t, root, "nodotdeb", "d", "1.0", "all")
	writeDeb(t, root, "e.txt", "e", "1.0", "all")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.deb"), 0755))

	t.Run("deb", func(t *testing.T) {
		res, err := Build(ctx, root, Options{})
		require.NoError(t, err)
		// a name only has to end with the type, so udeb files match too
		assert.EqualValues(t, []string{"a=1.0", "c=1.0", "d=1.0"}, versions(res.Packages))
		assert.Empty(t, res.Skipped)
	})
	t.Run("udeb", func(t *testing.T) {
		res, err := Build(ctx, root, Options{PackageType: "udeb"})
		require.NoError(t, err)
		assert.EqualValues(t, []string{"c=1.0"}, versions(res.Packages))
	})
}

func TestBuild_InvalidRoot(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	dir := t.TempDir()
	file := debtest.WriteFile(t, dir, "file.deb", []byte("x"))

	for _, root := range []string{filepath.Join(dir, "missing"), file} {
		t.Run(filepath.Base(root), func(t *testing.T) {
			_, err := Build(ctx, root, Options{})
			assert.ErrorIs(t, err, ErrInvalidRoot)
		})
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10})))
	cancel()

	root := t.TempDir()
	writeDeb(t, root, "a.deb", "a", "1.0", "all")

	_, err := Build(ctx, root, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
