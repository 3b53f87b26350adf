package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notegen/internal/display"
	"github.com/fakeyudi/notegen/internal/logging"
	"github.com/fakeyudi/notegen/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [topic...]",
	Short: "Open the interactive notes generator",
	Long: "Open the interactive notes generator. A topic given on the command line\n" +
		"is filled in and generated immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		return runUI(cmd, topic, topic != "")
	},
}

// runUI hands the terminal to the TUI. Logging moves to a file for the
// duration since the TUI owns stdout and stderr.
func runUI(cmd *cobra.Command, topic string, autoStart bool) error {
	log, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	renderer, err := display.NewRenderer(cfg.Style, cfg.WrapWidth)
	if err != nil {
		return err
	}

	log.Info("tui starting", "endpoint", cfg.Endpoint, "style", cfg.Style)
	err = tui.Run(tui.Options{
		Context:    cmd.Context(),
		Controller: newController(log),
		Renderer:   renderer,
		Log:        log,
		Endpoint:   cfg.Endpoint,
		Topic:      topic,
		AutoStart:  autoStart,
		WrapWidth:  cfg.WrapWidth,
	})
	if err != nil {
		log.Error("tui exited", "err", err)
		return fmt.Errorf("running tui: %w", err)
	}
	log.Info("tui exited")
	return nil
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
