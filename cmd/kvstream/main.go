package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/stream"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	debug      bool

	cfg     *config.Config
	wrapper *stream.Wrapper
	owned   bool
	stdin   io.Reader
}

func main() {
	a := &app{stdin: os.Stdin}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "kvstream",
		Short:        "Read and write key/value store entries as seekable streams",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.owned {
				return nil
			}
			return a.wrapper.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "configs/config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logs")

	root.AddCommand(
		newCatCmd(a),
		newPutCmd(a),
		newStatCmd(a),
		newLsCmd(a),
		newInfoCmd(a),
		newRmCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if a.debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{Level: level, TimeFormat: time.RFC3339})
	a.cfg = cfg
	return nil
}

// setup loads the config and builds the wrapper unless one was injected.
func (a *app) setup() error {
	if a.wrapper != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}

	w, err := stream.NewFromConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("build streams: %w", err)
	}
	a.wrapper = w
	a.owned = true
	return nil
}
