package debian

import "github.com/djcass44/debscan/pkg/checksum"

// Well-known control and index field names.
const (
	FieldPackage      = "Package"
	FieldVersion      = "Version"
	FieldArchitecture = "Architecture"
	FieldFilename     = "Filename"
	FieldSize         = "Size"
	FieldMD5          = "MD5sum"
	FieldSHA1         = "SHA1"
	FieldSHA256       = "SHA256"
)

// Fields is an ordered set of control fields. Keys are
// case-sensitive and unique. The zero value is empty and ready to use.
type Fields struct {
	keys   []string
	values map[string]string
}

// Package describes a single binary package archive.
type Package struct {
	Fields   Fields
	Filename string
	checksum.Checksums
}

// Name returns the value of the Package field.
func (p *Package) Name() string {
	v, _ := p.Fields.Get(FieldPackage)
	return v
}

func (p *Package) Version() string {
	v, _ := p.Fields.Get(FieldVersion)
	return v
}

func (p *Package) Architecture() string {
	v, _ := p.Fields.Get(FieldArchitecture)
	return v
}

func (p *Package) String() string {
	return p.Name() + "_" + p.Version() + "_" + p.Architecture()
}
