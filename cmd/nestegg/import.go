package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/importer"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from CSV or OFX statements",
		Long: `Import bank statements. Every entry lands in the inbox as PENDING.

CSV columns are found by header name unless --date, --value and --description
or a saved --mapping name them. Each file is imported in its own transaction,
so one bad file does not undo the others.

Examples:
  # Import single file
  nestegg import ~/Downloads/extrato.ofx

  # Import every CSV in a directory with a saved layout
  nestegg import ~/Downloads/bank/*.csv --mapping 3f2a...`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runImport,
	}

	cmd.Flags().String("mapping", "", "saved CSV mapping id")
	cmd.Flags().String("date", "", "CSV date column")
	cmd.Flags().String("value", "", "CSV value column")
	cmd.Flags().String("description", "", "CSV description column")
	cmd.Flags().Bool("no-header", false, "CSV has no header row; columns are 0-based indexes")

	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	opts, err := importOptions(cmd)
	if err != nil {
		return err
	}

	w := out(cmd)
	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Importing %d file(s)", len(files))))

	bar := cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing statements...")
	imported, failed := 0, 0
	for _, path := range files {
		n, err := a.importFile(cmd, path, opts)
		if err != nil {
			failed++
			slog.Error("Failed to import file", "file", path, "error", err)
			fmt.Fprintln(w, cli.FormatError(fmt.Sprintf("%s: %s", filepath.Base(path), err)))
		} else {
			imported += n
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s) into the inbox", imported)))
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to import", failed, len(files))
	}
	return nil
}

func (a *app) importFile(cmd *cobra.Command, path string, opts importer.Options) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	var imported int
	err = a.withImporter(cmd.Context(), func(svc *importer.Service) error {
		result, err := svc.Import(cmd.Context(), a.settings.OwnerID, filepath.Base(path), data, opts)
		if err != nil {
			return err
		}
		imported = result.Imported
		return nil
	})
	return imported, err
}

func importOptions(cmd *cobra.Command) (importer.Options, error) {
	flags := cmd.Flags()
	var opts importer.Options
	opts.MappingID, _ = flags.GetString("mapping")
	opts.NoHeader, _ = flags.GetBool("no-header")

	var columns importer.ColumnMapping
	columns.Date, _ = flags.GetString("date")
	columns.Value, _ = flags.GetString("value")
	columns.Description, _ = flags.GetString("description")
	if columns != (importer.ColumnMapping{}) {
		if opts.MappingID != "" {
			return opts, fmt.Errorf("--mapping cannot be combined with explicit columns")
		}
		opts.Columns = &columns
	}
	return opts, nil
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
