package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/djcass44/debscan/pkg/airutil"
	debscanv1 "github.com/djcass44/debscan/pkg/api/v1"
	"github.com/djcass44/debscan/pkg/index"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "generate a Packages index from a directory of archives",
	Args:  cobra.MaximumNArgs(1),
	RunE:  scan,
}

var errSkipped = errors.New("one or more files were skipped")

const (
	flagConfig       = "config"
	flagMultiversion = "multiversion"
	flagArch         = "arch"
	flagType         = "type"
	flagOutput       = "output"
	flagPrefix       = "prefix"
	flagCompress     = "compress"
	flagFailOnSkip   = "fail-on-skip"
)

func init() {
	addScanFlags(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagConfig, "c", "", "path to a scan configuration file")
	cmd.Flags().BoolP(flagMultiversion, "m", false, "include every version of a package instead of only the newest")
	cmd.Flags().StringP(flagArch, "a", "", "only include packages for this architecture")
	cmd.Flags().StringP(flagType, "t", index.DefaultPackageType, "suffix of the package files to scan")
	cmd.Flags().StringP(flagOutput, "o", "", "file to write the index to (defaults to stdout)")
	cmd.Flags().StringP(flagPrefix, "p", "", "prefix to add to every Filename")
	cmd.Flags().StringSlice(flagCompress, nil, "also write compressed copies of the index (gz, xz, zst)")
	cmd.Flags().Bool(flagFailOnSkip, false, "fail if any file cannot be indexed")

	_ = cmd.MarkFlagFilename(flagConfig, ".yaml", ".yml", ".json")
}

func scan(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	spec, err := scanSpec(cmd, args)
	if err != nil {
		return err
	}
	log.V(1).Info("starting scan", "root", spec.Root, "type", spec.Type, "arch", spec.Arch, "multiversion", spec.Multiversion)

	res, err := index.Build(cmd.Context(), spec.Root, index.Options{
		Multiversion: spec.Multiversion,
		PackageType:  spec.Type,
		Arch:         spec.Arch,
		Prefix:       spec.Prefix,
	})
	if err != nil {
		log.Error(err, "failed to scan directory", "root", spec.Root)
		return err
	}

	for _, s := range res.Skipped {
		log.Info("skipped file", "file", s.Path, "reason", s.Err.Error())
	}
	if len(res.Skipped) > 0 {
		log.Info("some files could not be indexed", "skipped", len(res.Skipped), "indexed", len(res.Packages))
		if spec.FailOnSkip {
			return fmt.Errorf("%w: %d", errSkipped, len(res.Skipped))
		}
	}

	if spec.Output == "" {
		return index.Write(cmd.OutOrStdout(), res.Packages)
	}
	return index.WriteFile(cmd.Context(), spec.Output, res.Packages, spec.Compress...)
}

// scanSpec combines the configuration file (if any), the command
// line flags and the positional root argument. Flags that were set
// explicitly take precedence over the configuration file.
func scanSpec(cmd *cobra.Command, args []string) (debscanv1.ScanSpec, error) {
	var spec debscanv1.ScanSpec

	flags := cmd.Flags()
	if path, _ := flags.GetString(flagConfig); path != "" {
		cfg, err := readConfig(path)
		if err != nil {
			return spec, err
		}
		spec = cfg.Spec
	}

	if flags.Changed(flagMultiversion) {
		spec.Multiversion, _ = flags.GetBool(flagMultiversion)
	}
	if flags.Changed(flagArch) {
		spec.Arch, _ = flags.GetString(flagArch)
	}
	if flags.Changed(flagType) || spec.Type == "" {
		spec.Type, _ = flags.GetString(flagType)
	}
	if flags.Changed(flagOutput) {
		spec.Output, _ = flags.GetString(flagOutput)
	}
	if flags.Changed(flagPrefix) {
		spec.Prefix, _ = flags.GetString(flagPrefix)
	}
	if flags.Changed(flagCompress) {
		spec.Compress, _ = flags.GetStringSlice(flagCompress)
	}
	if flags.Changed(flagFailOnSkip) {
		spec.FailOnSkip, _ = flags.GetBool(flagFailOnSkip)
	}
	if len(args) > 0 {
		spec.Root = args[0]
	}

	if spec.Root == "" {
		return spec, fmt.Errorf("%w: no directory given", index.ErrInvalidRoot)
	}
	if err := airutil.ExpandAll(&spec.Root, &spec.Output, &spec.Prefix); err != nil {
		return spec, err
	}

	spec.Compress = normaliseSuffixes(spec.Compress)
	if len(spec.Compress) > 0 && spec.Output == "" {
		return spec, fmt.Errorf("--%s requires --%s", flagCompress, flagOutput)
	}
	return spec, nil
}

// normaliseSuffixes turns "gz" or ".gz" into ".gz".
func normaliseSuffixes(ss []string) []string {
	var out []string
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		out = append(out, s)
	}
	return out
}
