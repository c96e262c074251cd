package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"folio/internal/model"
	"folio/internal/playback"
)

var playNoBrowser bool

var playCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play a gallery item",
	Long: `Open the item's media in the browser and hold the player open until
Enter is pressed. Opening a catalog video counts a view.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playNoBrowser, "no-browser", false, "Print the media URL instead of opening it")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := svc.LoadGallery(ctx, model.CategoryAll, true); err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	closed := make(chan struct{})
	var once sync.Once
	svc.Player().OnChange(func(item *model.DisplayableItem) {
		if item == nil {
			once.Do(func() { close(closed) })
		}
	})

	item, err := svc.Play(args[0])
	if err != nil {
		return err
	}

	mediaURL := model.ResolveAsset(svc.Gateway().BaseURL(), item.MediaURL, "")
	fmt.Println(headerStyle.Render("▶ " + item.Title))
	if item.ShowBusinessDescription() {
		fmt.Println(item.BusinessDescription)
	} else if item.Description != "" {
		fmt.Println(item.Description)
	}
	if item.DemoURL != "" {
		fmt.Println(mutedStyle.Render("Demo: " + item.DemoURL))
	}
	if item.SourceURL != "" {
		fmt.Println(mutedStyle.Render("Source: " + item.SourceURL))
	}

	if playNoBrowser {
		fmt.Println(mediaURL)
	} else if err := browser.OpenURL(mediaURL); err != nil {
		slog.Warn("Failed to open browser", "error", err)
		fmt.Println(mediaURL)
	}

	fmt.Println(mutedStyle.Render("Press Enter to close the player."))
	go func() {
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		svc.Document().Press(playback.KeyEscape)
	}()

	select {
	case <-closed:
	case <-ctx.Done():
		svc.Player().Close()
	}
	return nil
}
