package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	debscanv1 "github.com/djcass44/debscan/pkg/api/v1"
	"k8s.io/apimachinery/pkg/util/yaml"
)

const configKind = "ScanConfig"

func readConfig(s string) (debscanv1.ScanConfig, error) {
	f, err := os.Open(s)
	if err != nil {
		return debscanv1.ScanConfig{}, err
	}
	defer f.Close()

	var config debscanv1.ScanConfig
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return debscanv1.ScanConfig{}, fmt.Errorf("decoding config %s: %w", s, err)
	}
	if config.Kind != "" && config.Kind != configKind {
		return debscanv1.ScanConfig{}, fmt.Errorf("unexpected config kind %q (expected %s)", config.Kind, configKind)
	}

	// relative paths are relative to the configuration file
	dir := filepath.Dir(s)
	for _, p := range []*string{&config.Spec.Root, &config.Spec.Output} {
		if *p != "" && !filepath.IsAbs(*p) && !hasEnvPrefix(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return config, nil
}

// hasEnvPrefix reports whether p starts with a ${VAR} reference,
// in which case it can't be resolved until it has been expanded.
// A bare $VAR is not expanded so it is treated as a literal path.
func hasEnvPrefix(p string) bool {
	return strings.HasPrefix(p, "${")
}
