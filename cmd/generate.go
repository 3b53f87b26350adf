package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/console"
	"github.com/fakeyudi/notegen/internal/display"
	"github.com/fakeyudi/notegen/internal/stream"
)

var (
	renderOutput bool
	noSpinner    bool
)

var generateCmd = &cobra.Command{
	Use:     "generate <topic...>",
	Aliases: []string{"gen"},
	Short:   "Stream notes for a topic to stdout",
	Long: "Stream notes for a topic to stdout as they are generated. Use \"-\" to\n" +
		"read the topic from stdin. Ctrl-C stops the generation and keeps what\n" +
		"was received so far.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, err := readTopic(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		log := pslog.Ctx(cmd.Context())

		var render display.Renderer
		if renderOutput {
			width := cfg.WrapWidth
			if width == 0 {
				width = 80
			}
			render, err = display.NewRenderer(cfg.Style, width)
			if err != nil {
				return err
			}
		}
		var spin *console.Spinner
		if !noSpinner && isTerminal(cmd.ErrOrStderr()) {
			spin = console.NewSpinner(cmd.ErrOrStderr(), "generating notes…")
		}
		printer := console.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), spin, render)

		ctrl := newController(log)
		ctrl.OnUpdate(printer.Handle)
		_, err = ctrl.Run(cmd.Context(), topic)
		switch {
		case errors.Is(err, stream.ErrEmptyPrompt):
			return fmt.Errorf("topic is empty")
		case errors.Is(err, stream.ErrCancelled):
			// Stopped by the user; the partial notes are already printed.
			return nil
		}
		return err
	},
}

// readTopic joins args into a topic, or reads it from in when the only
// argument is "-".
func readTopic(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading topic from stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func init() {
	generateCmd.Flags().BoolVar(&renderOutput, "render", false, "render the finished notes as markdown")
	generateCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "do not show a progress spinner")
	rootCmd.AddCommand(generateCmd)
}
