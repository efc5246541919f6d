package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forecast-bot/internal/catalog"
	"forecast-bot/internal/common/logger"
)

// offlineApp builds the read path for one-shot commands, logging to stderr
// at warn level so stdout carries only the result.
func offlineApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	zapLog := logger.New("warn", "console")
	return newApp(cmd.Context(), cfg, zapLog, 1)
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [author [year [document [scenario]]]]",
		Short: "List the choices available at a catalog level",
		Long: `List what the bot would offer after the given selections.

Example:
  forecast-bot catalog
  forecast-bot catalog "Банк России" 2024
  forecast-bot catalog "Банк России" 2024 ОНДКП "Обычный прогноз"`,
		Args: cobra.MaximumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			choices, err := a.listChoices(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, c := range choices {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (a *app) listChoices(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		authors, err := a.resolver.ListAuthors(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(authors))
		for i, au := range authors {
			out[i] = au.String()
		}
		return out, nil
	}

	author, ok := catalog.ParseAuthor(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown author %q", args[0])
	}
	switch len(args) {
	case 1:
		return a.resolver.ListYears(ctx, author)
	case 2:
		docs, err := a.resolver.ListDocuments(ctx, author, args[1])
		if err != nil {
			return nil, err
		}
		out := make([]string, len(docs))
		for i, d := range docs {
			out[i] = d.Name
		}
		return out, nil
	}

	doc, ok, err := a.resolver.FindDocument(ctx, author, args[1], args[2])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("document %q not found for %s %s", args[2], author, args[1])
	}
	loc := catalog.Location{Author: author, Year: args[1], Document: doc, Scenario: catalog.NoScenario}
	if doc.Kind.HasScenarios() {
		if len(args) == 3 {
			return a.resolver.ListScenarios(ctx, author, args[1])
		}
		loc.Scenario = args[3]
	}

	groups, err := a.resolver.ListVariableGroups(ctx, loc)
	if err != nil {
		return nil, err
	}
	if doc.Kind.SingleTable() {
		mapping, err := a.assembler.Variables(ctx, catalog.Location{
			Author: loc.Author, Year: loc.Year, Document: doc, Scenario: loc.Scenario, Group: groups[0],
		})
		if err != nil {
			return nil, err
		}
		return mapping.Labels(), nil
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out, nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the export workbook of a variable group",
		Long: `Build the same workbook the bot sends for a variable group.

Example:
  forecast-bot export --author "Банк России" --year 2024 --document ОНДКП \
    --scenario "Обычный прогноз" --group "Платежный баланс" --out ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			author, _ := cmd.Flags().GetString("author")
			year, _ := cmd.Flags().GetString("year")
			document, _ := cmd.Flags().GetString("document")
			scenario, _ := cmd.Flags().GetString("scenario")
			group, _ := cmd.Flags().GetString("group")
			out, _ := cmd.Flags().GetString("out")

			if author == "" || year == "" || document == "" {
				return fmt.Errorf("--author, --year and --document flags are required")
			}

			a, err := offlineApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := a.locate(cmd.Context(), author, year, document, scenario, group)
			if err != nil {
				return err
			}
			export, err := a.assembler.BuildExport(cmd.Context(), loc)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", out, err)
			}
			path := filepath.Join(out, strings.ReplaceAll(export.FileName, string(filepath.Separator), "_"))
			if err := os.WriteFile(path, export.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			a.zapLog.Debug("Export written", zap.String("path", path))

			fmt.Fprintln(cmd.OutOrStdout(), path)
			fmt.Fprintln(cmd.OutOrStdout(), export.Caption)
			return nil
		},
	}

	cmd.Flags().String("author", "", "Forecast author, e.g. \"Банк России\"")
	cmd.Flags().String("year", "", "Forecast year")
	cmd.Flags().String("document", "", "Document name as listed by the catalog command")
	cmd.Flags().String("scenario", "", "Scenario (periodic documents only)")
	cmd.Flags().String("group", "", "Variable group (not used for single-table documents)")
	cmd.Flags().StringP("out", "o", ".", "Output directory")
	return cmd
}
