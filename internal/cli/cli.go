// Package cli implements the folio command line subcommands.
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/di"
	"github.com/aristath/folio/pkg/logger"
)

// Commands lists every folio subcommand.
var Commands = []subcommands.Command{
	&importCmd{},
	&analyzeCmd{},
	&optimizeCmd{},
	&frontierCmd{},
}

// stdout and stderr are swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// output holds the flags shared by every reporting command.
type output struct {
	json bool
	raw  bool
}

func (o *output) setFlags(f *flag.FlagSet) {
	f.BoolVar(&o.json, "json", false, "print the result as JSON")
	f.BoolVar(&o.raw, "raw", false, "print markdown without terminal styling")
}

// print writes v as JSON when requested, else md rendered for the terminal.
func (o *output) print(v interface{}, md string) error {
	if o.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return printMarkdown(md, o.raw)
}

func printMarkdown(md string, raw bool) error {
	if raw {
		_, err := io.WriteString(stdout, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(stdout, out)
	return err
}

// open loads the configuration and wires databases and services. Background
// jobs are not registered.
func open() (*di.Container, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Output: stderr})

	container, err := di.InitializeDatabases(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := di.InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, nil, err
	}
	return container, cfg, nil
}

func fail(err error, status subcommands.ExitStatus) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return status
}
