package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborstreet/tally/internal/cli"
	"github.com/harborstreet/tally/internal/model"
	"github.com/harborstreet/tally/internal/rules"
	"github.com/harborstreet/tally/internal/storage"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage custom classification patterns",
		Long: `Custom patterns run after the built-in rules and before the
fallback heuristics. A pattern matches when all of its constraints hold:
any keyword appears in the description, the amount sits inside the
configured bounds, and the account matches when one is set.`,
	}

	cmd.AddCommand(patternsAddCmd())
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsDeleteCmd())
	cmd.AddCommand(patternsExportCmd())
	cmd.AddCommand(patternsImportCmd())
	return cmd
}

// withStore opens the configured store for one pattern operation.
func withStore(ctx context.Context, fn func(storage.Store) error) error {
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
	return fn(store)
}

func patternsAddCmd() *cobra.Command {
	var (
		keywords  []string
		category  string
		account   string
		property  string
		entity    string
		amountMin float64
		amountMax float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if category == "" {
				return fmt.Errorf("--category is required")
			}
			if len(keywords) == 0 {
				return fmt.Errorf("at least one --keyword is required")
			}

			pattern := model.CustomPattern{
				Name:     args[0],
				Category: category,
				Account:  account,
				Property: property,
				Entity:   entity,
				Keywords: lowerAll(keywords),
			}
			if cmd.Flags().Changed("amount-min") {
				pattern.AmountMin = &amountMin
			}
			if cmd.Flags().Changed("amount-max") {
				pattern.AmountMax = &amountMax
			}
			pattern = rules.NewPattern(pattern)

			return withStore(cmd.Context(), func(store storage.Store) error {
				existing, err := store.GetCustomPatterns(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.ReplaceCustomPatterns(cmd.Context(), append(existing, pattern)); err != nil {
					return err
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added pattern %q (%s).", pattern.Name, pattern.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "keyword to match in the description (repeatable)")
	cmd.Flags().StringVar(&category, "category", "", "category to assign")
	cmd.Flags().StringVar(&account, "account", "", "restrict to one account (last four digits)")
	cmd.Flags().StringVar(&property, "property", "", "property to attribute")
	cmd.Flags().StringVar(&entity, "entity", "", "entity to attribute")
	cmd.Flags().Float64Var(&amountMin, "amount-min", 0, "inclusive minimum amount")
	cmd.Flags().Float64Var(&amountMax, "amount-max", 0, "inclusive maximum amount")
	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom patterns in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(store storage.Store) error {
				patterns, err := store.GetCustomPatterns(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(cli.RenderPatterns(patterns))
				return nil
			})
		},
	}
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom pattern by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store storage.Store) error {
				patterns, err := store.GetCustomPatterns(cmd.Context())
				if err != nil {
					return err
				}

				kept := make([]model.CustomPattern, 0, len(patterns))
				for _, p := range patterns {
					if p.ID != args[0] {
						kept = append(kept, p)
					}
				}
				if len(kept) == len(patterns) {
					return fmt.Errorf("no pattern with id %q", args[0])
				}
				if err := store.ReplaceCustomPatterns(cmd.Context(), kept); err != nil {
					return err
				}
				fmt.Println(cli.SuccessStyle.Render("Pattern deleted."))
				return nil
			})
		},
	}
}

func patternsExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export custom patterns to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(store storage.Store) error {
				patterns, err := store.GetCustomPatterns(cmd.Context())
				if err != nil {
					return err
				}
				data, err := rules.ExportPatterns(patterns)
				if err != nil {
					return err
				}
				if output == "" {
					fmt.Println(string(data))
					return nil
				}
				if err := os.WriteFile(output, data, 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Exported %d patterns to %s.", len(patterns), output)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func patternsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import patterns from an export file (appends, never replaces)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied import path
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			export, err := rules.ParseExport(data)
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), func(store storage.Store) error {
				existing, err := store.GetCustomPatterns(cmd.Context())
				if err != nil {
					return err
				}
				merged := rules.MergePatterns(existing, export.Patterns)
				if err := store.ReplaceCustomPatterns(cmd.Context(), merged); err != nil {
					return err
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
					"Imported %d patterns (%d total).", len(export.Patterns), len(merged))))
				return nil
			})
		},
	}
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
