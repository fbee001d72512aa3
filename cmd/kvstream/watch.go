package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/events"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print write events published on NATS",
		Args:  cobra.NoArgs,
		// only NATS is needed, stores are not opened
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			nc, err := infra.GetNATSConnection(a.cfg.Nats, a.cfg.Environment)
			if err != nil {
				return fmt.Errorf("connect nats: %w", err)
			}
			defer nc.Close()

			out := cmd.OutOrStdout()
			sub, err := events.Subscribe(nc, a.cfg.Nats.SubjectPrefix, func(subject string, e events.WriteEvent) {
				if scheme != "" && e.Scheme != scheme {
					return
				}
				printEvent(out, e)
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()
			logger.Info("Watching write events", "subject", sub.Subject)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "", "only show events for this scheme")
	return cmd
}

func printEvent(out io.Writer, e events.WriteEvent) {
	fmt.Fprintf(out, "%s %s://%s wrote %s at %d, size %s\n",
		time.Unix(e.Timestamp, 0).Format(time.RFC3339),
		e.Scheme, e.Key,
		humanize.Bytes(uint64(e.Length)), e.Offset,
		humanize.Bytes(uint64(e.Size)),
	)
}
