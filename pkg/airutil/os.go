package airutil

import (
	"fmt"
	"github.com/drone/envsubst"
)

// ExpandEnv substitutes ${VAR} style references in s using
// the process environment. Only the braced form is recognised,
// a bare $VAR is left as it is. Unset variables expand to an empty
// string and bash-style defaults (${VAR:-default}) are supported.
func ExpandEnv(s string) (string, error) {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", s, err)
	}
	return val, nil
}

// ExpandAll runs ExpandEnv over every non-empty string pointed to by ss.
func ExpandAll(ss ...*string) error {
	for _, s := range ss {
		if *s == "" {
			continue
		}
		val, err := ExpandEnv(*s)
		if err != nil {
			return err
		}
		*s = val
	}
	return nil
}
