package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/console"
	"github.com/fakeyudi/notegen/internal/session"
	"github.com/fakeyudi/notegen/internal/stream"
	"github.com/fakeyudi/notegen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Regenerate notes every time a topic file is saved",
	Long: "Stream notes for the contents of <file>, then wait. Each save that\n" +
		"changes the file stops the generation in flight and starts a new one.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}
		log := pslog.Ctx(cmd.Context()).With("file", path)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		printer := console.NewPrinter(out, errOut, nil, nil)
		header := color.New(color.FgCyan, color.Bold)

		ctrl := newController(log)
		ctrl.OnUpdate(func(u stream.Update) {
			s := u.Snapshot
			if s.Status == session.Streaming && s.Text == "" && u.Delta == "" {
				header.Fprintf(errOut, "── %s ──\n", firstLine(s.Prompt))
			}
			printer.Handle(u)
		})

		topics := make(chan string)
		errc := make(chan error, 1)
		go func() {
			errc <- watch.Topics(ctx, path, topics, log)
			cancel()
		}()
		log.Info("watching topic file")
		watch.Drive(ctx, ctrl, topics)
		cancel()
		return <-errc
	},
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
	}
	return s
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
