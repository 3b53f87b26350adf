package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/client"
	"github.com/fakeyudi/notegen/internal/config"
	"github.com/fakeyudi/notegen/internal/logging"
	"github.com/fakeyudi/notegen/internal/stream"
)

// cfg holds the effective configuration, populated in PersistentPreRunE.
var cfg config.Config

// Global flag values; empty means "keep the configured value".
var (
	flagEndpoint string
	flagStyle    string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:           "notegen",
	Short:         "Generate notes on any topic, streamed live into your terminal",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env, global file, project file, then NOTEGEN_* variables.
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlags(&loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		errOut := cmd.ErrOrStderr()
		log := logging.New(errOut, cfg.LogLevel, isTerminal(errOut))
		cmd.SetContext(pslog.ContextWithLogger(ctx, log))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(cmd.OutOrStdout()) {
			return cmd.Help()
		}
		return runUI(cmd, "", false)
	},
}

func applyFlags(c *config.Config) {
	if flagEndpoint != "" {
		c.Endpoint = flagEndpoint
	}
	if flagStyle != "" {
		c.Style = flagStyle
	}
	if flagLogLevel != "" {
		c.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		c.LogFile = flagLogFile
	}
}

// newController wires a generation client for the configured endpoint.
func newController(log pslog.Logger) *stream.Controller {
	cl := client.New(cfg.Endpoint, cfg.ConnectTimeout, log)
	return stream.NewController(cl, log)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEndpoint, "endpoint", "", "generation endpoint URL")
	pf.StringVar(&flagStyle, "style", "", "render style: auto, dark, light, notty, ascii or plain")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info or error")
	pf.StringVar(&flagLogFile, "log-file", "", "log file used while the TUI is running")
}
