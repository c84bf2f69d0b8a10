package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/risutools/charx/internal/config"
	"github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "charx",
		Usage:   "Character card archive toolkit",
		Version: Version,
		Commands: []*cli.Command{
			inspectCmd(cfg),
			cardCmd(cfg),
			assetsCmd(cfg),
			extractCmd(cfg),
			moduleCmd(cfg),
			lorebookCmd(cfg),
			metaCmd(cfg),
			packCmd(cfg),
			sheetCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// archiveArg returns the positional archive path or an error result.
func archiveArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", outputError(errors.NewInvalidRequest("archive path is required"))
	}
	return c.Args().First(), nil
}

// inspectCmd creates the inspect command.
func inspectCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a .charx archive",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "worker", Usage: "Run the parse on a supervised worker"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Inspect(c.Context, cfg, ops.InspectInput{
				Path:   path,
				Worker: c.Bool("worker"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// cardCmd creates the card command.
func cardCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "card",
		Usage:     "Print the archive's normalized character card",
		ArgsUsage: "<archive>",
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Card(c.Context, cfg, ops.CardInput{Path: path})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// assetsCmd creates the assets command.
func assetsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "assets",
		Usage:     "List embedded assets with category, MIME type, and size",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter: emotions|icons|backgrounds|other"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Assets(c.Context, cfg, ops.AssetsInput{
				Path:     path,
				Category: c.String("category"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// extractCmd creates the extract command.
func extractCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Write asset payloads to files on disk",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Destination directory (default: ~/.charx/exports)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Extract only this category"},
			&cli.StringFlag{Name: "asset", Aliases: []string{"a"}, Usage: "Extract a single asset by archive path"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Extract(c.Context, cfg, ops.ExtractInput{
				Path:     path,
				Dir:      c.String("dir"),
				Category: c.String("category"),
				Asset:    c.String("asset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// moduleCmd creates the module command.
func moduleCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "module",
		Usage:     "Report the archive's embedded module",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-script", Usage: "Include the module's script body"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Module(c.Context, cfg, ops.ModuleInput{
				Path:          path,
				IncludeScript: c.Bool("include-script"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// lorebookCmd creates the lorebook command.
func lorebookCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "lorebook",
		Usage:     "Print the card's embedded lorebook",
		ArgsUsage: "<archive>",
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Lorebook(c.Context, cfg, ops.LorebookInput{Path: path})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// metaCmd creates the meta command.
func metaCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "meta",
		Usage:     "Print the archive's x_meta records",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Return only the record with this id"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Meta(c.Context, cfg, ops.MetaInput{
				Path: path,
				ID:   c.String("id"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// packCmd creates the pack command.
func packCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "Compose a .charx archive from files on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "card", Required: true, Usage: "Path to the card JSON file"},
			&cli.StringFlag{Name: "module", Usage: "Path to a .risum module file"},
			&cli.StringFlag{Name: "assets-dir", Usage: "Directory of asset payloads"},
			&cli.StringFlag{Name: "meta-dir", Usage: "Directory of <id>.json metadata records"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default: ~/.charx/exports/<name>.charx)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Pack(c.Context, cfg, ops.PackInput{
				CardPath:   c.String("card"),
				ModulePath: c.String("module"),
				AssetsDir:  c.String("assets-dir"),
				MetaDir:    c.String("meta-dir"),
				Out:        c.String("out"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// sheetCmd creates the sheet command.
func sheetCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "sheet",
		Usage:     "Render an HTML character sheet for the archive",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default: ~/.charx/exports/<name>-sheet.html)"},
		},
		Action: func(c *cli.Context) error {
			path, err := archiveArg(c)
			if err != nil {
				return err
			}

			output, err := ops.Sheet(c.Context, cfg, ops.SheetInput{
				Path: path,
				Out:  c.String("out"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if charxErr, ok := err.(*errors.CharxError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", charxErr.Code, charxErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
