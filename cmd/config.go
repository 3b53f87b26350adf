package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notegen/internal/config"
	"github.com/fakeyudi/notegen/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		logFile := cfg.LogFile
		if logFile == "" {
			if p, err := logging.DefaultPath(); err == nil {
				logFile = p + " (default)"
			}
		}
		wrap := "pane width"
		if cfg.WrapWidth > 0 {
			wrap = fmt.Sprintf("%d", cfg.WrapWidth)
		}
		fmt.Fprintf(out, "endpoint:         %s\n", cfg.Endpoint)
		fmt.Fprintf(out, "style:            %s\n", cfg.Style)
		fmt.Fprintf(out, "connect_timeout:  %s\n", cfg.ConnectTimeout)
		fmt.Fprintf(out, "log_level:        %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_file:         %s\n", logFile)
		fmt.Fprintf(out, "wrap_width:       %s\n", wrap)

		fmt.Fprintln(out)
		if p, err := config.GlobalPath(); err == nil {
			fmt.Fprintf(out, "global config:    %s\n", p)
		}
		fmt.Fprintf(out, "project config:   .notegenconfig\n")
		fmt.Fprintf(out, "environment:      %s_*\n", config.EnvPrefix)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
