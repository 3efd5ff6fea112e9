package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/danimoh/hoistdeps/internal/config"
	"github.com/danimoh/hoistdeps/pkg/api"
)

func loadOptions(cmd *cli.Command) (api.Options, error) {
	var file config.File
	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return api.Options{}, err
		}
		file = loaded
	}

	// Flags win over the config file
	methodName := file.Method
	if cmd.String("method") != "" {
		methodName = cmd.String("method")
	}
	method, err := api.MethodFromString(methodName)
	if err != nil {
		return api.Options{}, err
	}

	options := api.Options{
		Method:               method,
		CustomCode:           file.Custom,
		AnonymousCrossOrigin: file.CrossOrigin || cmd.Bool("cross-origin"),
		BaseURL:              file.BaseURL,
		NativeImport:         file.NativeImport || cmd.Bool("native-import"),
	}
	if cmd.String("base-url") != "" {
		options.BaseURL = cmd.String("base-url")
	}
	return options, nil
}

func rewriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "rewrite",
		Usage:     "wrap dynamic imports in the given source files (pass 1)",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "write",
				Usage: "write results back instead of printing to stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("no input files")
			}
			plugin, err := newPlugin(cmd)
			if err != nil {
				return err
			}
			defer printMessages(plugin)

			for _, path := range cmd.Args().Slice() {
				contents, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				result, changed := plugin.Transform(path, string(contents))
				if !changed {
					continue
				}
				if cmd.Bool("write") {
					if err := os.WriteFile(path, []byte(result.Code), 0o644); err != nil {
						return err
					}
				} else {
					fmt.Print(result.Code)
				}
			}
			return nil
		},
	}
}

func finalizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "finalize",
		Usage:     "resolve markers in emitted chunks against the metafile (pass 2)",
		ArgsUsage: "<output-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "metafile",
				Usage:    "bundler metafile describing the chunk graph",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				return fmt.Errorf("no output directory")
			}
			plugin, err := newPlugin(cmd)
			if err != nil {
				return err
			}
			defer printMessages(plugin)

			meta, err := os.ReadFile(cmd.String("metafile"))
			if err != nil {
				return err
			}
			bundle, err := api.BundleFromMetafile(meta)
			if err != nil {
				return err
			}

			// The metafile has the graph but not the generated code
			for _, chunk := range bundle.Chunks() {
				contents, err := os.ReadFile(filepath.Join(dir, chunk.FileName))
				if err != nil {
					return err
				}
				chunk.Code = string(contents)
			}

			plugin.GenerateBundle(bundle)

			for _, chunk := range bundle.Chunks() {
				if err := os.WriteFile(filepath.Join(dir, chunk.FileName), []byte(chunk.Code), 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
