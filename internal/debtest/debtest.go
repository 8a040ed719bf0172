// Package debtest builds binary packages in memory so that
// tests don't need to carry .deb files in testdata.
package debtest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// Member is a raw ar archive entry.
type Member struct {
	Name string
	Data []byte
}

// Control renders a minimal control file for the given package.
func Control(name, version, arch string, extra ...string) string {
	s := fmt.Sprintf("Package: %s\nVersion: %s\nArchitecture: %s\n", name, version, arch)
	for _, e := range extra {
		s += e + "\n"
	}
	return s
}

// Deb builds a complete package whose control archive uses the
// compression identified by suffix ("", ".gz", ".xz" or ".zst").
func Deb(t testing.TB, control, suffix string) []byte {
	t.Helper()
	return Archive(t,
		Member{Name: "debian-binary", Data: []byte("2.0\n")},
		Member{Name: "control.tar" + suffix, Data: ControlTar(t, control, suffix)},
		Member{Name: "data.tar.gz", Data: Compress(t, Tar(t, map[string]string{"./usr/share/doc/README": "hello\n"}), ".gz")},
	)
}

// ControlTar builds a compressed control archive containing ./control.
func ControlTar(t testing.TB, control, suffix string) []byte {
	t.Helper()
	return Compress(t, Tar(t, map[string]string{
		"./control":   control,
		"./md5sums":   "d41d8cd98f00b204e9800998ecf8427e  usr/share/doc/README\n",
		"./conffiles": "",
	}), suffix)
}

// Tar builds an uncompressed tar stream. Entries are written
// in a stable order.
func Tar(t testing.TB, files map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "./",
		Typeflag: tar.TypeDir,
		Mode:     0755,
		ModTime:  time.Unix(0, 0),
	}))
	for _, name := range sortedKeys(files) {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(files[name])),
			ModTime:  time.Unix(0, 0),
		}))
		_, err := tw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// Compress encodes data with the format identified by suffix.
func Compress(t testing.TB, data []byte, suffix string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	var w io.WriteCloser
	var err error
	switch suffix {
	case "":
		return data
	case ".gz":
		w = gzip.NewWriter(buf)
	case ".xz":
		w, err = xz.NewWriter(buf)
	case ".zst":
		w, err = zstd.NewWriter(buf)
	default:
		t.Fatalf("unknown compression suffix: %q", suffix)
	}
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Archive writes the given members into an ar archive.
func Archive(t testing.TB, members ...Member) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := ar.NewWriter(buf)
	require.NoError(t, aw.WriteGlobalHeader())
	for _, m := range members {
		require.NoError(t, aw.WriteHeader(&ar.Header{
			Name:    m.Name,
			ModTime: time.Unix(0, 0),
			Mode:    0644,
			Size:    int64(len(m.Data)),
		}))
		// the writer pads after every call, so the content has to go
		// in a single write
		_, err := aw.Write(m.Data)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

// WriteFile stores data as dir/name, creating parent directories.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
