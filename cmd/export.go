package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/app"
)

var (
	exportGCS      bool
	exportCategory string
	exportProjects bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a gallery snapshot as JSON",
	Long: `Write the current gallery, and the portfolio feed when --projects is set,
to the export directory or, with --gcs, to the configured GCS bucket.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportGCS, "gcs", false, "Write to GCS_BUCKET instead of the local export dir")
	exportCmd.Flags().StringVarP(&exportCategory, "category", "c", "all", "Category filter")
	exportCmd.Flags().BoolVarP(&exportProjects, "projects", "p", true, "Include static portfolio projects")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	category, err := parseCategoryFlag(exportCategory)
	if err != nil {
		return err
	}
	if _, err := svc.LoadGallery(ctx, category, exportProjects); err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	sink, closeSink, err := app.NewExportSink(ctx, svc.Config(), exportGCS)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	written, err := svc.Export(ctx, sink, time.Now())
	if err != nil {
		return err
	}

	for _, location := range written {
		fmt.Println(successStyle.Render("✓ " + location))
	}
	return nil
}
