package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/config"
	"github.com/funvibe/fulfill/internal/pipeline"
	"github.com/funvibe/fulfill/internal/prettyprinter"
	"github.com/funvibe/fulfill/internal/store"
)

var (
	colorArg string
	chainArg bool
)

var explainCmd = &cobra.Command{
	Use:   "explain <scenario.yaml>...",
	Short: "Report the fulfillment errors of recorded scenarios",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	mode := cfg.Color
	if colorArg != "" {
		mode = colorArg
	}
	switch mode {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q", mode)
	}
	printer := prettyprinter.NewReportPrinter(prettyprinter.ColorEnabled(mode, os.Stdout), chainArg || cfg.Chain)

	ctxs := make([]*pipeline.PipelineContext, 0, len(args))
	for _, path := range args {
		ctx := pipeline.NewPipelineContext(path, logger.With(zap.String("scenario", path)))
		// An explicit --catalog merges the catalog's declarations.
		if catalogArg != "" {
			catalog, err := store.Open(cfg.Catalog)
			if err != nil {
				return err
			}
			decls, err := catalog.Declarations()
			_ = catalog.Close()
			if err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
			ctx.Catalog = decls
		}
		ctxs = append(ctxs, pipeline.Explain().Run(ctx))
	}

	failed := 0
	for _, ctx := range ctxs {
		for _, report := range ctx.Reports {
			printer.PrintError(report.Name, report.Error)
		}
		for _, err := range ctx.Errors {
			failed++
			logger.Error("scenario failed", zap.String("scenario", ctx.ScenarioPath), zap.Error(err))
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), printer.String())
	if failed > 0 {
		return fmt.Errorf("%d scenario error(s)", failed)
	}
	return nil
}
