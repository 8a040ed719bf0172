package debian

import (
	"fmt"
	"slices"
)

// NewFields builds Fields from alternating key and value
// pairs. Later duplicates overwrite earlier values in place.
func NewFields(kv ...string) Fields {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("debian: NewFields called with odd number of arguments: %d", len(kv)))
	}
	var f Fields
	for i := 0; i < len(kv); i += 2 {
		f.set(kv[i], kv[i+1])
	}
	return f
}

// Get returns the value of key and whether it was present.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (f Fields) Keys() []string {
	return slices.Clone(f.keys)
}

func (f Fields) Len() int {
	return len(f.keys)
}

// Merge returns a new Fields containing every entry of f followed
// by the entries of o. Values from o win on collision and keep the
// position they had in f.
func (f Fields) Merge(o Fields) Fields {
	out := Fields{
		keys:   make([]string, 0, len(f.keys)+len(o.keys)),
		values: make(map[string]string, len(f.keys)+len(o.keys)),
	}
	for _, k := range f.keys {
		out.set(k, f.values[k])
	}
	for _, k := range o.keys {
		out.set(k, o.values[k])
	}
	return out
}

// set is only used while a Fields is being constructed.
func (f *Fields) set(key, value string) {
	if f.values == nil {
		f.values = map[string]string{}
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}
