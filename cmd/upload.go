package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/internal/model"
	"folio/internal/upload"
)

type draftFlags struct {
	title        string
	description  string
	business     string
	category     string
	technologies string
	demoURL      string
	sourceURL    string
	featured     bool
	yes          bool
}

var (
	uploadFlags draftFlags
	editFlags   draftFlags
	deleteBlind bool
	deleteYes   bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a new video",
	Long: `Upload a video file with its metadata. Missing fields are prompted for
unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a video's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	bindDraftFlags(uploadCmd, &uploadFlags)
	bindDraftFlags(editCmd, &editFlags)
	deleteCmd.Flags().BoolVar(&deleteBlind, "blind", false, "Delete even if the id is not in the loaded catalog")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(uploadCmd, editCmd, deleteCmd)
}

func bindDraftFlags(cmd *cobra.Command, f *draftFlags) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Short description")
	cmd.Flags().StringVar(&f.business, "business", "", "Business description")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category")
	cmd.Flags().StringVar(&f.technologies, "tech", "", "Comma separated technologies")
	cmd.Flags().StringVar(&f.demoURL, "demo", "", "Live demo URL")
	cmd.Flags().StringVar(&f.sourceURL, "source", "", "Source code URL")
	cmd.Flags().BoolVar(&f.featured, "featured", false, "Mark as featured")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the interactive form")
}

// apply copies every flag the user set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d *model.FormDraft) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		d.Title = f.title
	}
	if changed("description") {
		d.Description = f.description
	}
	if changed("business") {
		d.BusinessDescription = f.business
	}
	if changed("category") {
		c, err := parseCategoryFlag(f.category)
		if err != nil {
			return err
		}
		if c == model.CategoryAll {
			return fmt.Errorf("a video needs a concrete category")
		}
		d.Category = c
	}
	if changed("tech") {
		d.Technologies = model.ParseTechnologies(f.technologies)
	}
	if changed("demo") {
		d.DemoURL = f.demoURL
	}
	if changed("source") {
		d.SourceURL = f.sourceURL
	}
	if changed("featured") {
		d.Featured = f.featured
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := requireLogin(svc); err != nil {
		return err
	}

	file, err := model.MediaFileFromPath(args[0])
	if err != nil {
		return err
	}

	draft := model.FormDraft{Category: model.CategoryOther, File: file}
	if err := uploadFlags.apply(cmd, &draft); err != nil {
		return err
	}
	if !uploadFlags.yes {
		if err := runDraftForm(&draft, "Upload "+file.Name); err != nil {
			return err
		}
	}

	stop := watchProgress(svc.Coordinator())
	video, err := svc.Coordinator().Create(ctx, draft)
	stop()
	if err != nil {
		return reportFailure(svc, err)
	}

	fmt.Println(successStyle.Render("✓ " + svc.Coordinator().Snapshot().Message))
	fmt.Println(mutedStyle.Render("id: " + video.ID))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := requireLogin(svc); err != nil {
		return err
	}
	if err := svc.Store().Load(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	existing, ok := svc.Store().Get(args[0])
	if !ok {
		return fmt.Errorf("no video with id %q", args[0])
	}

	draft := model.DraftFromVideo(existing)
	if err := editFlags.apply(cmd, &draft); err != nil {
		return err
	}
	if !editFlags.yes {
		if err := runDraftForm(&draft, "Edit "+existing.Title); err != nil {
			return err
		}
	}

	var video model.Video
	err = runWithSpinner("Saving changes", func() error {
		var err error
		video, err = svc.Coordinator().Edit(ctx, draft)
		return err
	})
	if err != nil {
		return reportFailure(svc, err)
	}

	fmt.Println(successStyle.Render("✓ " + svc.Coordinator().Snapshot().Message))
	renderItem(os.Stdout, video.Item())
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := requireLogin(svc); err != nil {
		return err
	}

	id := args[0]
	if !deleteBlind {
		if err := svc.Store().Load(ctx); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	if !deleteYes {
		title := id
		if v, ok := svc.Store().Get(id); ok {
			title = v.Title
		}
		confirmed, err := confirm(fmt.Sprintf("Delete %q?", title), "This cannot be undone.")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(infoStyle.Render("Kept " + title))
			return nil
		}
	}

	err = runWithSpinner("Deleting "+id, func() error {
		return svc.Coordinator().Delete(ctx, id, deleteBlind)
	})
	if err != nil {
		return reportFailure(svc, err)
	}
	fmt.Println(successStyle.Render(svc.Coordinator().Snapshot().Message))
	return nil
}

func runDraftForm(d *model.FormDraft, title string) error {
	technologies := model.JoinTechnologies(d.Technologies)

	categoryOptions := make([]huh.Option[model.Category], 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categoryOptions = append(categoryOptions, huh.NewOption(c.Label(), c))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&d.Title).
				Validate(required("Title")),
			huh.NewText().
				Title("Description").
				Value(&d.Description).
				Validate(required("Description")),
			huh.NewText().
				Title("Business description").
				Description("Optional long-form pitch").
				Value(&d.BusinessDescription),
			huh.NewSelect[model.Category]().
				Title("Category").
				Options(categoryOptions...).
				Value(&d.Category),
		).Title(title),
		huh.NewGroup(
			huh.NewInput().
				Title("Technologies").
				Description("Comma separated").
				Value(&technologies),
			huh.NewInput().
				Title("Demo URL").
				Value(&d.DemoURL),
			huh.NewInput().
				Title("Source URL").
				Value(&d.SourceURL),
			huh.NewConfirm().
				Title("Featured?").
				Value(&d.Featured),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	d.Title = strings.TrimSpace(d.Title)
	d.Technologies = model.ParseTechnologies(technologies)
	return nil
}

// watchProgress prints the upload percentage until stop is called.
func watchProgress(coord *upload.Coordinator) (stop func()) {
	var mu sync.Mutex
	last := -1
	unsubscribe := coord.Subscribe(func(s upload.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.State != upload.StateRunning || s.Progress == last {
			return
		}
		last = s.Progress
		fmt.Fprintf(os.Stderr, "\r%s %s", infoStyle.Render("Uploading"), progressBar(s.Progress, 30))
	})
	return func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if last >= 0 {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), percent)
}

// reportFailure prints the coordinator's user-facing message for err.
func reportFailure(svc *app.Service, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	snap := svc.Coordinator().Snapshot()
	if snap.State == upload.StateFailed && snap.Message != "" {
		fmt.Println(warnStyle.Render("✗ " + snap.Message))
	}
	return err
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
