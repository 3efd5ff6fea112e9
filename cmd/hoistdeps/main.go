package main

// A standalone driver for the two transform passes, for debugging a build
// outside the host pipeline: "rewrite" runs the per-unit pass over files and
// "finalize" replays the whole-bundle pass from a bundler metafile plus the
// emitted chunks. The library in pkg/api is the real integration surface;
// nothing here is part of the transform contract.

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/danimoh/hoistdeps/pkg/api"
)

func main() {
	cmd := rootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "hoistdeps",
		Usage: "rewrite dynamic imports so their dependencies are preloaded",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to an hoistdeps.toml file",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "resource hint method: preload, prefetch or custom",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "prefix for rewritten dependency URLs",
			},
			&cli.BoolFlag{
				Name:  "cross-origin",
				Usage: "issue hints with crossorigin=\"anonymous\"",
			},
			&cli.BoolFlag{
				Name:  "native-import",
				Usage: "load the base target with native import() syntax",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable trace logging",
			},
		},
		Commands: []*cli.Command{
			rewriteCommand(),
			finalizeCommand(),
		},
	}
}

// newPlugin builds the plugin from the config file (when given) overlaid
// with command-line flags.
func newPlugin(cmd *cli.Command) (*api.Plugin, error) {
	options, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Bool("verbose") {
		trace, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		options.Trace = trace
	}

	return api.New(options)
}

func printMessages(plugin *api.Plugin) {
	for _, msg := range plugin.Messages() {
		kind := "warning"
		if msg.Kind == api.ErrorMsg {
			kind = "error"
		}
		if msg.Line > 0 {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", msg.File, msg.Line, msg.Column, kind, msg.Text)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", kind, msg.Text)
		}
	}
}
