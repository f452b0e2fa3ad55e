// Command swarm hosts an agent swarm over HTTP or runs single actions.
//
//	swarm serve --config swarm.yaml [--addr :8000]
//	swarm exec  --config swarm.yaml <action-id> [payload-json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/hupe1980/agentswarm"
	"github.com/hupe1980/agentswarm/config"
	"github.com/hupe1980/agentswarm/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	configFlag := &cli.StringSliceFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "configuration file (json or yaml), may be repeated",
		Sources: cli.EnvVars("SWARM_CONFIG"),
	}

	return &cli.Command{
		Name:      "swarm",
		Usage:     "agent swarm host",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the swarm over HTTP",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "addr", Usage: "listen address, overrides server.address"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.StringSlice("config")...)
					if err != nil {
						return err
					}
					if addr := cmd.String("addr"); addr != "" {
						cfg.Server.Address = addr
					}

					logger, closeLog, err := newLogger(cfg.Log, stderr)
					if err != nil {
						return err
					}
					defer closeLog()

					sw, err := agentswarm.Build(ctx, cfg, func(o *agentswarm.Options) { o.Logger = logger })
					if err != nil {
						return err
					}

					return agentswarm.NewServer(sw, cfg, logger).ListenAndServe(ctx)
				},
			},
			{
				Name:      "exec",
				Usage:     "execute one action and print its output",
				ArgsUsage: "<action-id> [payload-json]",
				Flags:     []cli.Flag{configFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return cli.Exit("missing action id", 2)
					}
					actionID := cmd.Args().Get(0)
					payload := parsePayload(cmd.Args().Get(1))

					cfg, err := config.Load(cmd.StringSlice("config")...)
					if err != nil {
						return err
					}

					logger, closeLog, err := newLogger(cfg.Log, stderr)
					if err != nil {
						return err
					}
					defer closeLog()

					sw, err := agentswarm.Build(ctx, cfg, func(o *agentswarm.Options) { o.Logger = logger })
					if err != nil {
						return err
					}

					out := sw.Execute(ctx, actionID, payload)

					enc := json.NewEncoder(stdout)
					enc.SetIndent("", "  ")
					if err := enc.Encode(out); err != nil {
						return err
					}
					if !out.IsSuccess() {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
		},
	}
}

// parsePayload accepts JSON and falls back to the raw argument as a string.
func parsePayload(arg string) any {
	if arg == "" {
		return nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(arg), &raw); err == nil {
		return raw
	}
	return arg
}

// newLogger writes to w and, when cfg.Dir is set, to a daily log file.
func newLogger(cfg config.LogConfig, w io.Writer) (*logging.SwarmLogger, func(), error) {
	out := w
	closeFn := func() {}

	if cfg.Dir != "" {
		file, err := logging.NewDailyFileWriter(cfg.Dir, cfg.Prefix)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(w, file)
		closeFn = func() { _ = file.Close() }
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Level),
		Format:    cfg.Format,
		Output:    out,
		Component: "swarm",
	})
	return logger, closeFn, nil
}
