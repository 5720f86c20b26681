package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harborstreet/tally/internal/cli"
	"github.com/harborstreet/tally/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a bank CSV or OFX export",
		Long: `Import parses a bank export, sets aside duplicates of already
committed transactions, classifies the rest through built-in rules,
custom patterns, and fallback heuristics, then commits the batch.

CSV files name their account with the first four-digit run in the file
name (for example Chase0111_Activity.csv). OFX and QFX files carry
their own account numbers.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Review the classification without committing")
	cmd.Flags().Bool("ai-uncertain", false, "Re-run uncertain rows through the AI before committing")
	cmd.Flags().Bool("show-rejected", false, "List rows that failed validation")

	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("import.ai_uncertain", cmd.Flags().Lookup("ai-uncertain"))
	_ = viper.BindPFlag("import.show_rejected", cmd.Flags().Lookup("show-rejected"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	filename := args[0]

	content, err := os.ReadFile(filename) // #nosec G304 -- user-supplied import path
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close store", "error", closeErr)
		}
	}()

	categorizer, err := buildCategorizer(cfg)
	if err != nil {
		return err
	}
	session := importer.NewSession(store, buildEngine(cfg), categorizer, cfg.Accounts)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Classifying"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	session.OnProgress = func(done, total int) {
		bar.ChangeMax(total)
		_ = bar.Set(done)
	}

	summary, err := session.Upload(ctx, filename, string(content))
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if viper.GetBool("import.ai_uncertain") {
		if !categorizer.Enabled() {
			slog.Warn("--ai-uncertain requested but no AI key is configured; skipping")
		} else {
			updated, recatErr := session.RecategorizeUncertain(ctx)
			if recatErr != nil {
				return recatErr
			}
			slog.Info("AI re-categorization complete", "updated", updated)
			summary = session.Summary()
		}
	}

	fmt.Println(cli.RenderReviewSummary(summary))
	if viper.GetBool("import.show_rejected") {
		if out := cli.RenderFailures(session.Failed()); out != "" {
			fmt.Println(out)
		}
	}

	if viper.GetBool("import.dry_run") {
		fmt.Println(cli.WarningStyle.Render("Dry run: nothing committed."))
		return nil
	}
	if summary.Categorized == 0 {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
			"Nothing new in %s.", filepath.Base(filename))))
		return nil
	}

	result, err := session.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderCommitResult(result))
	return nil
}
