package cmd

import (
	"path/filepath"

	"github.com/djcass44/debscan/pkg/debian"
	"github.com/djcass44/debscan/pkg/index"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "print the index entry for a single package archive",
	Args:  cobra.ExactArgs(1),
	RunE:  show,
}

func init() {
	showCmd.Flags().StringP(flagPrefix, "p", "", "prefix to add to the Filename")
}

func show(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString(flagPrefix)

	path := filepath.Clean(args[0])
	pkg, err := debian.NewPackage(cmd.Context(), filepath.Dir(path), filepath.Base(path), prefix)
	if err != nil {
		return err
	}
	return index.Write(cmd.OutOrStdout(), []*debian.Package{pkg})
}
