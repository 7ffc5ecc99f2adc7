package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"statuscheck-go/config"
	"statuscheck-go/logging"
)

// errCheckFailed marks a check that ran but did not confirm the certificate.
// The result has already been printed.
var errCheckFailed = errors.New("status check failed")

var (
	cfg      *config.Config
	logger   *zap.SugaredLogger
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "statuscheck",
	Short:         "Check certificate status with the online update service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}

		l, err := logging.New(c.Logging.Level, c.Logging.Development)
		if err != nil {
			return err
		}

		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errCheckFailed):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, colorError("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(serveCmd)
}
