package cmd

import (
	"fmt"

	"github.com/djcass44/debscan/pkg/index"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <index>",
	Short: "list the packages in an existing Packages index",
	Args:  cobra.ExactArgs(1),
	RunE:  list,
}

func list(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	entries, err := index.Open(cmd.Context(), args[0])
	if err != nil {
		log.Error(err, "failed to read index", "path", args[0])
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", e.Package, e.Version, e.Architecture); err != nil {
			return err
		}
	}
	return nil
}
