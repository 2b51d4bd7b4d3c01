package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/otc/internal/core"
)

type importOptions struct {
	file    string
	dryRun  bool
	maxSize int64
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all stored orders with the rows of a CSV file",
		Long: "Reads a ';' or ',' delimited order export, normalizes every row and " +
			"replaces the contents of otc_orders in batches. With --dry-run the " +
			"file is only checked and nothing is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dryRun {
				return runDryImport(cmd, opts)
			}
			return runImport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file to import (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the file without touching the database")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", 20<<20, "Largest file accepted by --dry-run, in bytes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runDryImport(cmd *cobra.Command, opts importOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	text, err := core.ReadText(f, opts.maxSize)
	if err != nil {
		return describe(err)
	}
	records, stats, err := core.NormalizeOrders(text)
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d valid rows, %d rejected\n", filepath.Base(opts.file), len(records), stats.Rejected)
	return nil
}

func runImport(cmd *cobra.Command, root *rootOptions, opts importOptions) error {
	ctx := cmd.Context()
	s, err := root.connect(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	errOut := cmd.ErrOrStderr()
	result, err := s.service.Import(ctx, filepath.Base(opts.file), f, func(inserted, total int) {
		fmt.Fprintf(errOut, "\rinserted %d/%d", inserted, total)
	})
	fmt.Fprintln(errOut)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d orders (%d rejected) in %s\n",
		result.Imported, result.Rejected, result.Duration.Round(time.Millisecond))
	return nil
}
