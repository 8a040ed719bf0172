package debian

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrControlParse = errors.New("invalid control file")

// ParseControl reads the first stanza of a control file.
//
// A field starts at column 0 as "Key: value". Lines starting with a
// space or tab continue the previous field. They are appended after a
// newline with only their first character removed, so that the
// remaining indentation (and "." paragraph markers) survives.
// Parsing stops at the first blank line that follows a field.
//
// https://www.debian.org/doc/debian-policy/ch-controlfields.html#syntax-of-control-files
func ParseControl(data []byte) (Fields, error) {
	if !utf8.Valid(data) {
		return Fields{}, fmt.Errorf("%w: not valid UTF-8", ErrControlParse)
	}

	var f Fields
	var key string
	var value strings.Builder

	flush := func() {
		if key != "" {
			f.set(key, value.String())
		}
		key = ""
		value.Reset()
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			if key == "" && f.Len() == 0 {
				continue
			}
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if key == "" {
				return Fields{}, fmt.Errorf("%w: line %d: continuation line before any field", ErrControlParse, i+1)
			}
			value.WriteByte('\n')
			value.WriteString(line[1:])
			continue
		}

		flush()
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return Fields{}, fmt.Errorf("%w: line %d: missing ':' separator", ErrControlParse, i+1)
		}
		if k == "" || strings.ContainsAny(k, " \t") {
			return Fields{}, fmt.Errorf("%w: line %d: invalid field name %q", ErrControlParse, i+1, k)
		}
		if _, exists := f.Get(k); exists {
			return Fields{}, fmt.Errorf("%w: line %d: duplicate field %q", ErrControlParse, i+1, k)
		}
		key = k
		value.WriteString(strings.TrimSpace(v))
	}
	flush()

	if f.Len() == 0 {
		return Fields{}, fmt.Errorf("%w: no fields found", ErrControlParse)
	}
	return f, nil
}
