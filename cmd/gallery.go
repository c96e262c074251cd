package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"folio/internal/gallery"
	"folio/internal/model"
)

var (
	galleryCategory string
	galleryProjects bool
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	featuredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List the video gallery",
	Long: `Load the video catalog and print it, featured items first.
Use --projects to merge in the static portfolio projects.`,
	Args: cobra.NoArgs,
	RunE: runGallery,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List videos together with the static portfolio projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		galleryProjects = true
		return runGallery(cmd, args)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the known categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-12s %s\n", model.CategoryAll, model.CategoryAll.Label())
		for _, c := range model.Categories() {
			fmt.Fprintf(out, "%-12s %s\n", c, c.Label())
		}
	},
}

func init() {
	galleryCmd.Flags().StringVarP(&galleryCategory, "category", "c", string(model.CategoryAll), "Category filter")
	galleryCmd.Flags().BoolVarP(&galleryProjects, "projects", "p", false, "Include static portfolio projects")
	projectsCmd.Flags().StringVarP(&galleryCategory, "category", "c", string(model.CategoryAll), "Category filter")
	rootCmd.AddCommand(galleryCmd, projectsCmd, categoriesCmd)
}

func runGallery(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	category, err := parseCategoryFlag(galleryCategory)
	if err != nil {
		return err
	}

	snap, err := svc.LoadGallery(ctx, category, galleryProjects)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	if p, ok := svc.Portfolio(); ok && p.Profile.Name != "" {
		fmt.Println(headerStyle.Render(p.Profile.Name))
		if p.Profile.Title != "" {
			fmt.Println(mutedStyle.Render(p.Profile.Title))
		}
		fmt.Println()
	}

	renderSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func parseCategoryFlag(value string) (model.Category, error) {
	c := model.Category(strings.TrimSpace(value))
	if c == "" || strings.EqualFold(string(c), string(model.CategoryAll)) {
		return model.CategoryAll, nil
	}
	for _, known := range model.Categories() {
		if strings.EqualFold(string(c), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown category %q, see 'folio categories'", value)
}

func renderSnapshot(w io.Writer, snap gallery.Snapshot) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d)", snap.Category.Label(), len(snap.Items))))

	if len(snap.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No videos in this category yet."))
		return
	}

	if len(snap.Featured) > 0 {
		fmt.Fprintln(w, featuredStyle.Render("\n★ Featured"))
		for _, item := range snap.Featured {
			renderItem(w, item)
		}
	}
	if len(snap.Regular) > 0 {
		if len(snap.Featured) > 0 {
			fmt.Fprintln(w, headerStyle.Render("\nMore work"))
		}
		for _, item := range snap.Regular {
			renderItem(w, item)
		}
	}
}

func renderItem(w io.Writer, item model.DisplayableItem) {
	meta := []string{tagStyle.Render(item.Category.String())}
	if d := model.FormatDuration(item.Duration); d != "" {
		meta = append(meta, d)
	}
	if item.Source == model.SourceVideo {
		meta = append(meta, model.FormatViews(item.Views))
	}
	if !item.HasPlayableMedia {
		meta = append(meta, "no preview")
	}

	fmt.Fprintf(w, "  %s  %s\n", item.Title, mutedStyle.Render("["+item.ID+"]"))
	fmt.Fprintf(w, "    %s\n", strings.Join(meta, " · "))
	if item.Description != "" {
		fmt.Fprintf(w, "    %s\n", item.Description)
	}
	if len(item.Technologies) > 0 {
		fmt.Fprintf(w, "    %s\n", mutedStyle.Render(strings.Join(item.Technologies, ", ")))
	}
}
