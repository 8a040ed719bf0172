package cmd

import (
	"fmt"

	"github.com/djcass44/debscan/pkg/version"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "compare two Debian version strings",
	Long:  "Prints '<', '=' or '>' depending on how the first version sorts relative to the second.",
	Args:  cobra.ExactArgs(2),
	RunE:  compare,
}

const flagStrict = "strict"

func init() {
	compareCmd.Flags().Bool(flagStrict, false, "reject versions that are not valid according to Debian policy")
}

func compare(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool(flagStrict)

	if strict {
		for _, s := range args {
			if _, err := version.Parse(s); err != nil {
				return fmt.Errorf("parsing %q: %w", s, err)
			}
		}
	}

	var out string
	switch version.Compare(args[0], args[1]) {
	case -1:
		out = "<"
	case 0:
		out = "="
	default:
		out = ">"
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
