package app

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"folio/internal/auth"
	"folio/internal/catalog"
	"folio/internal/gallery"
	"folio/internal/gateway"
	"folio/internal/model"
	"folio/internal/playback"
	"folio/internal/storage"
	"folio/internal/upload"
	"folio/pkg/config"
)

// BuildService wires every component from cfg. The session lives in the
// file at cfg.SessionPath.
func BuildService(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	client := gateway.NewClient(gateway.Options{
		BaseURL:      cfg.APIBaseURL,
		PortfolioURL: cfg.PortfolioURL,
		UserAgent:    cfg.HTTP.UserAgent,
	})

	session := auth.NewSession(auth.NewFileStore(cfg.SessionPath))
	store := catalog.NewStore(client)
	view := gallery.NewView(store, model.Category(cfg.Gallery.DefaultCategory))

	coordinator := upload.NewCoordinator(client, store, session, upload.Options{
		MaxFileSize:      cfg.Upload.MaxFileSize(),
		ProgressStep:     cfg.Upload.ProgressStep,
		ProgressInterval: cfg.Upload.ProgressInterval,
		ProgressCap:      cfg.Upload.ProgressCap,
	})

	document := playback.NewHeadlessDocument()
	player := playback.NewController(document, client, store)

	return NewService(ServiceOptions{
		Config:      cfg,
		Gateway:     client,
		Session:     session,
		Store:       store,
		View:        view,
		Coordinator: coordinator,
		Document:    document,
		Player:      player,
	}), nil
}

// NewExportSink returns a GCS sink when useGCS is set, otherwise a local
// directory sink. closeFn releases the sink's resources.
func NewExportSink(ctx context.Context, cfg *config.Config, useGCS bool) (sink storage.Sink, closeFn func() error, err error) {
	if !useGCS {
		return storage.NewLocalSink(cfg.Export.Dir), func() error { return nil }, nil
	}

	opts := []option.ClientOption{option.WithUserAgent(cfg.HTTP.UserAgent)}
	if cfg.GCPProject != "" {
		opts = append(opts, option.WithQuotaProject(cfg.GCPProject))
	}

	gcs, err := storage.NewGCSSink(ctx, cfg.GCSBucket, opts...)
	if err != nil {
		return nil, nil, err
	}
	return gcs, gcs.Close, nil
}
