package cmd

import (
	"errors"
	"os"

	"github.com/djcass44/debscan/pkg/index"
	"github.com/djcass44/go-utils/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var command = &cobra.Command{
	Use:          "debscan",
	Short:        "generate Debian package indexes",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetInt(flagLogLevel)

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.Level(logLevel * -1))

		_, ctx := logging.NewZap(cmd.Context(), zc)
		cmd.SetContext(ctx)
	},
}

const flagLogLevel = "v"

func init() {
	command.PersistentFlags().Int(flagLogLevel, 0, "log level. Higher is more")
	command.AddCommand(scanCmd, showCmd, compareCmd, listCmd)
}

// exitCode maps fatal errors to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, index.ErrInvalidRoot) {
		return 2
	}
	return 1
}

func Execute(version string) {
	command.Version = version
	if err := command.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
