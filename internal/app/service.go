package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/apierr"
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

type Service struct {
	cfg         *config.Config
	gateway     *gateway.Client
	session     *auth.Session
	store       *catalog.Store
	view        *gallery.View
	coordinator *upload.Coordinator
	document    *playback.HeadlessDocument
	player      *playback.Controller
	portfolio   *model.Portfolio
}

type ServiceOptions struct {
	Config      *config.Config
	Gateway     *gateway.Client
	Session     *auth.Session
	Store       *catalog.Store
	View        *gallery.View
	Coordinator *upload.Coordinator
	Document    *playback.HeadlessDocument
	Player      *playback.Controller
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:         opts.Config,
		gateway:     opts.Gateway,
		session:     opts.Session,
		store:       opts.Store,
		view:        opts.View,
		coordinator: opts.Coordinator,
		document:    opts.Document,
		player:      opts.Player,
	}
}

func (s *Service) Config() *config.Config               { return s.cfg }
func (s *Service) Gateway() *gateway.Client             { return s.gateway }
func (s *Service) Session() *auth.Session               { return s.session }
func (s *Service) Store() *catalog.Store                { return s.store }
func (s *Service) View() *gallery.View                  { return s.view }
func (s *Service) Coordinator() *upload.Coordinator     { return s.coordinator }
func (s *Service) Document() *playback.HeadlessDocument { return s.document }
func (s *Service) Player() *playback.Controller         { return s.player }

// Close shuts the modal, cancels pending view increments and any in-flight
// catalog load, and stops following the store.
func (s *Service) Close() {
	if s.player != nil {
		s.player.Shutdown()
	}
	if s.coordinator != nil {
		s.coordinator.Reset()
	}
	if s.view != nil {
		s.view.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// LoadGallery loads the catalog and, when withProjects is set, the static
// portfolio feed, then selects category. A failed catalog load still returns
// the (empty) snapshot together with the error. A failed portfolio fetch is
// logged and the gallery falls back to videos only.
func (s *Service) LoadGallery(ctx context.Context, category model.Category, withProjects bool) (gallery.Snapshot, error) {
	s.view.SetCategory(category)

	if withProjects {
		portfolio, err := s.gateway.FetchPortfolio(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return s.view.Current(), err
			}
			slog.Warn("Failed to fetch portfolio", "error", err)
		} else {
			s.portfolio = &portfolio
			s.view.SetProjects(portfolio.Projects)
		}
	}

	if err := s.store.Load(ctx); err != nil {
		return s.view.Current(), err
	}
	return s.view.Current(), nil
}

// Portfolio is the last fetched portfolio feed, if any.
func (s *Service) Portfolio() (*model.Portfolio, bool) {
	return s.portfolio, s.portfolio != nil
}

// Login exchanges credentials for a token and persists the session.
func (s *Service) Login(ctx context.Context, username, password string) (model.Admin, error) {
	result, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		return model.Admin{}, err
	}
	if err := s.session.SetSession(result.Token, result.User); err != nil {
		return model.Admin{}, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("Logged in", "user", result.User.DisplayName())
	return result.User, nil
}

func (s *Service) Logout() error {
	return s.session.ClearSession()
}

// Play opens the item with id from the current gallery snapshot.
func (s *Service) Play(id string) (model.DisplayableItem, error) {
	item, ok := gallery.FindItem(s.view.Current().Items, id)
	if !ok {
		return model.DisplayableItem{}, apierr.New(apierr.KindNotFound, fmt.Sprintf("No gallery item with id %q", id))
	}
	if err := s.player.Open(item); err != nil {
		return item, err
	}
	return item, nil
}

func (s *Service) Contact(ctx context.Context, form model.ContactForm) (string, error) {
	return s.gateway.SubmitContact(ctx, form)
}

// Export writes the current gallery snapshot, and the portfolio feed when
// one was loaded, to sink under a timestamped prefix.
func (s *Service) Export(ctx context.Context, sink storage.Sink, now time.Time) ([]string, error) {
	snap := s.view.Current()
	prefix := exportPrefix(s.cfg.Export.Prefix, now)

	written, err := storage.Export(ctx, sink, prefix, storage.GallerySnapshot{
		ExportedAt: now.UTC(),
		Source:     s.gateway.BaseURL(),
		Category:   snap.Category,
		Items:      snap.Items,
		Featured:   len(snap.Featured),
	}, s.portfolio)
	if err != nil {
		return written, fmt.Errorf("failed to export gallery: %w", err)
	}

	slog.Info("Gallery exported", "prefix", prefix, "items", len(snap.Items))
	return written, nil
}
