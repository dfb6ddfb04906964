package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// runOptions carries everything apply, remove and validate take from the command line.
type runOptions struct {
	ConfigPath  string
	DryRun      bool
	Verbose     bool
	ForceUpdate bool
	Families    []string
	Templates   string
	Mode        model.Mode

	Out io.Writer
	Err io.Writer
}

func addFamilyFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringSliceVarP(&opts.Families, "family", "f", nil, "Only process these families (repeatable)")
	cmd.Flags().StringVarP(&opts.Templates, "templates", "t", "", "Template directory, overrides templates.path and templates.repository")
}

func validateRunOptions(opts runOptions) error {
	if strings.TrimSpace(opts.ConfigPath) != "" {
		abs, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("config file does not exist: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("config path %s is a directory", abs)
		}
	}

	for _, name := range opts.Families {
		if _, err := family.Get(strings.TrimSpace(name)); err != nil {
			return err
		}
	}

	if opts.Templates != "" {
		info, err := os.Stat(opts.Templates)
		if err != nil {
			return fmt.Errorf("template directory does not exist: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("template path %s is not a directory", opts.Templates)
		}
	}

	return nil
}
