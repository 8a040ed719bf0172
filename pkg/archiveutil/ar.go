package archiveutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/blakesmith/ar"
	"github.com/go-logr/logr"
	"io"
	"strings"
)

var ErrArchiveFormat = errors.New("invalid archive format")

// ControlMember is the name of the control archive inside a
// binary package, without its compression suffix.
const ControlMember = "control.tar"

// Member is a single file stored in an ar archive. Its content
// can only be read until the next call to Reader.Next.
type Member struct {
	Name string
	Size int64
	io.Reader
}

// Reader walks the members of an ar archive one at a time.
type Reader struct {
	ar *ar.Reader
	br *bufio.Reader
	// pad is the alignment byte left after the current member
	pad int
	// size is the total length of the archive
	size int64
	// offset is the position of the next unread header
	offset int64
}

// NewReader validates the ar magic at the start of r and prepares to
// read its members. size is the total length of the archive and is
// used to reject members that claim more bytes than are left.
func NewReader(r io.Reader, size int64) (*Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(ar.GLOBAL_HEADER))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file too short", ErrArchiveFormat)
		}
		return nil, err
	}
	if string(magic) != ar.GLOBAL_HEADER {
		return nil, fmt.Errorf("%w: bad magic %q", ErrArchiveFormat, magic)
	}
	return &Reader{
		ar:     ar.NewReader(br),
		br:     br,
		size:   size,
		offset: int64(len(ar.GLOBAL_HEADER)),
	}, nil
}

// Next advances to the next member. It returns io.EOF once the
// archive is exhausted.
func (r *Reader) Next() (*Member, error) {
	if r.offset >= r.size {
		return nil, io.EOF
	}
	if r.size-r.offset < ar.HEADER_BYTE_SIZE {
		return nil, fmt.Errorf("%w: truncated member header at offset %d", ErrArchiveFormat, r.offset)
	}
	if err := r.checkHeader(); err != nil {
		return nil, err
	}
	header, err := r.ar.Next()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated member header at offset %d", ErrArchiveFormat, r.offset)
		}
		return nil, err
	}
	r.offset += ar.HEADER_BYTE_SIZE
	r.pad = int(header.Size % 2)

	name := strings.TrimSuffix(header.Name, "/")
	if header.Size < 0 || header.Size > r.size-r.offset {
		return nil, fmt.Errorf("%w: member %q declares %d bytes but only %d remain", ErrArchiveFormat, name, header.Size, r.size-r.offset)
	}
	// members are aligned to an even offset
	r.offset += header.Size + header.Size%2

	return &Member{
		Name:   name,
		Size:   header.Size,
		Reader: r.ar,
	}, nil
}

// checkHeader looks at the next member header before it is parsed,
// since the ar reader treats a malformed size as zero.
func (r *Reader) checkHeader() error {
	// the rest of the current member has to be consumed before the
	// header can be seen
	if _, err := io.Copy(io.Discard, r.ar); err != nil {
		return fmt.Errorf("skipping member data: %w", err)
	}
	buf, err := r.br.Peek(r.pad + ar.HEADER_BYTE_SIZE)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: truncated member header at offset %d", ErrArchiveFormat, r.offset)
		}
		return err
	}
	hdr := buf[r.pad:]
	if string(hdr[58:60]) != "`\n" {
		return fmt.Errorf("%w: bad header terminator %q at offset %d", ErrArchiveFormat, hdr[58:60], r.offset)
	}
	size := strings.TrimRight(string(hdr[48:58]), " ")
	if size == "" || strings.Trim(size, "0123456789") != "" {
		return fmt.Errorf("%w: bad member size %q at offset %d", ErrArchiveFormat, hdr[48:58], r.offset)
	}
	return nil
}

// OpenControl finds the control archive member and returns it along
// with its compression suffix (e.g. ".xz"). Members with a suffix that
// has no registered Compression are skipped, and reported as
// ErrUnsupportedCompression if nothing better is found.
func OpenControl(ctx context.Context, r *Reader) (*Member, string, error) {
	log := logr.FromContextOrDiscard(ctx)
	var unsupported string
	for {
		member, err := r.Next()
		switch {
		case errors.Is(err, io.EOF):
			if unsupported != "" {
				return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedCompression, unsupported)
			}
			return nil, "", fmt.Errorf("%w: no %s member found", ErrArchiveFormat, ControlMember)
		case err != nil:
			log.V(3).Info("failed to read archive member", "err", err.Error())
			return nil, "", err
		}
		log.V(5).Info("found archive member", "name", member.Name, "size", member.Size)

		if !strings.HasPrefix(member.Name, ControlMember) {
			continue
		}
		suffix := strings.TrimPrefix(member.Name, ControlMember)
		if suffix != "" && !strings.HasPrefix(suffix, ".") {
			continue
		}
		if _, ok := LookupCompression(suffix); !ok {
			log.V(2).Info("skipping control member with unknown compression", "name", member.Name)
			if unsupported == "" {
				unsupported = member.Name
			}
			continue
		}
		return member, suffix, nil
	}
}
