// Command nvstatectl manages nvstate media on a host: format, inspect,
// export and import images, and simulate a device described by a profile.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global is bound into every command.
type Global struct {
	Out    io.Writer
	Logger *slog.Logger
}

// CLI is the command-line grammar.
type CLI struct {
	Profile string `short:"p" help:"Device profile path" default:"nvstate.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Format   FormatCmd   `cmd:"" help:"Write an empty preamble, discarding all sections"`
	Inspect  InspectCmd  `cmd:"" help:"Show the preamble, sections and element layout"`
	Export   ExportCmd   `cmd:"" help:"Write a snapshot of the medium"`
	Import   ImportCmd   `cmd:"" help:"Restore a snapshot onto the medium"`
	Simulate SimulateCmd `cmd:"" help:"Boot the profile's elements, apply changes and save"`

	logger *slog.Logger
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)

	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "nvstatectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("nvstatectl"),
		kong.Description("Manage nvstate persistent state media."),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kctx.Run(&Global{Out: out, Logger: cli.logger}, &cli)
}
