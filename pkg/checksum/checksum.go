package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Checksums holds the size and digests of a file as they appear
// in a Packages index.
type Checksums struct {
	Size   int64
	MD5    string
	SHA1   string
	SHA256 string
}

// File streams the file at path once and computes its checksums.
func File(path string) (Checksums, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Checksums{}, err
	}
	defer f.Close()

	sums, err := Sum(f)
	if err != nil {
		return Checksums{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return sums, nil
}

// Sum reads r until EOF and computes its checksums.
func Sum(r io.Reader) (Checksums, error) {
	md5h := md5.New()
	sha1h := sha1.New()
	sha256h := sha256.New()

	n, err := io.Copy(io.MultiWriter(md5h, sha1h, sha256h), r)
	if err != nil {
		return Checksums{}, err
	}
	return Checksums{
		Size:   n,
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1h.Sum(nil)),
		SHA256: hex.EncodeToString(sha256h.Sum(nil)),
	}, nil
}
