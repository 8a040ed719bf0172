package version

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty        = errors.New("version is empty")
	ErrInvalidEpoch = errors.New("epoch must be a non-negative integer")
	ErrUpstream     = errors.New("upstream version must start with a digit")
)

// Version is a Debian version split into its three parts.
//
// https://www.debian.org/doc/debian-policy/ch-controlfields.html#version
type Version struct {
	Epoch    string
	Upstream string
	Revision string
}

// Split separates s into epoch, upstream version and revision.
// The epoch is everything before the first ':' if that prefix is made
// of digits only, and the revision is everything after the last '-'.
// Split never fails.
func Split(s string) Version {
	var v Version
	if i := strings.IndexByte(s, ':'); i > 0 && isDigits(s[:i]) {
		v.Epoch = s[:i]
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		v.Revision = s[i+1:]
		s = s[:i]
	}
	v.Upstream = s
	return v
}

// Parse is the strict form of Split. It rejects versions that
// dpkg would refuse to install.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmpty
	}
	if i := strings.IndexByte(s, ':'); i >= 0 && !isDigits(s[:i]) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidEpoch, s[:i])
	}
	v := Split(s)
	if v.Upstream == "" || !isDigit(v.Upstream[0]) {
		return Version{}, fmt.Errorf("%w: %q", ErrUpstream, s)
	}
	for i := 0; i < len(v.Upstream); i++ {
		if c := v.Upstream[i]; !isDigit(c) && !isLetter(c) && !strings.ContainsRune(".+-~:", rune(c)) {
			return Version{}, fmt.Errorf("invalid character %q in upstream version %q", c, v.Upstream)
		}
	}
	for i := 0; i < len(v.Revision); i++ {
		if c := v.Revision[i]; !isDigit(c) && !isLetter(c) && !strings.ContainsRune(".+~", rune(c)) {
			return Version{}, fmt.Errorf("invalid character %q in revision %q", c, v.Revision)
		}
	}
	return v, nil
}

func (v Version) String() string {
	sb := strings.Builder{}
	if v.Epoch != "" {
		sb.WriteString(v.Epoch)
		sb.WriteByte(':')
	}
	sb.WriteString(v.Upstream)
	if v.Revision != "" {
		sb.WriteByte('-')
		sb.WriteString(v.Revision)
	}
	return sb.String()
}

// Compare orders two versions the way dpkg does.
// It returns -1 if a < b, 0 if they are equal and +1 if a > b.
func Compare(a, b string) int {
	return Split(a).Compare(Split(b))
}

// Compare orders v against o. A missing epoch is 0 and a
// missing revision compares the same as "0".
func (v Version) Compare(o Version) int {
	if c := compareNumeric(v.Epoch, o.Epoch); c != 0 {
		return c
	}
	if c := compareSegments(v.Upstream, o.Upstream); c != 0 {
		return c
	}
	return compareSegments(v.Revision, o.Revision)
}

// compareSegments walks both strings in lock-step, comparing alternating
// non-digit and digit runs.
func compareSegments(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// non-digit run
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := order(a, i), order(b, j)
			if ac != bc {
				return sign(ac - bc)
			}
			i++
			j++
		}

		// digit run
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}
		firstDiff := 0
		for i < len(a) && isDigit(a[i]) && j < len(b) && isDigit(b[j]) {
			if firstDiff == 0 {
				firstDiff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}
		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if firstDiff != 0 {
			return sign(firstDiff)
		}
	}
	return 0
}

// order gives the weight of the byte at s[i] inside a non-digit run.
// '~' sorts before the end of the string, which sorts before letters,
// which sort before everything else.
func order(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	switch {
	case isDigit(c):
		return 0
	case isLetter(c):
		return int(c)
	case c == '~':
		return -1
	default:
		return int(c) + 256
	}
}

// compareNumeric compares two strings of digits by value
// without converting them, so epochs of any length are safe.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return sign(len(a) - len(b))
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
