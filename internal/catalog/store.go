// Package catalog holds the ordered set of videos shown by the gallery.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"folio/internal/apierr"
	"folio/internal/model"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Fetcher is the part of the gateway the store loads from.
type Fetcher interface {
	ListVideos(ctx context.Context) ([]model.Video, error)
}

type Store struct {
	fetcher Fetcher
	group   singleflight.Group
	ctx     context.Context
	cancel  context.CancelFunc

	mu          sync.RWMutex
	videos      []model.Video
	status      Status
	err         error
	subscribers map[int]func()
	nextSub     int
}

func NewStore(fetcher Fetcher) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		fetcher:     fetcher,
		ctx:         ctx,
		cancel:      cancel,
		status:      StatusIdle,
		subscribers: make(map[int]func()),
	}
}

// Close cancels any in-flight load. A cancelled load leaves the videos
// untouched and reverts the status.
func (s *Store) Close() {
	s.cancel()
}

// Load fetches the catalog and replaces it wholesale. Concurrent calls share
// one request. ctx only bounds how long this caller waits; the shared fetch
// is tied to the store's lifetime.
func (s *Store) Load(ctx context.Context) error {
	ch := s.group.DoChan("load", func() (any, error) {
		return nil, s.load()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) load() error {
	s.mu.Lock()
	previous := s.status
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()

	videos, err := s.fetcher.ListVideos(s.ctx)
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		err = ctxErr
	}

	s.mu.Lock()
	switch {
	case err == nil:
		s.videos = uniqueVideos(videos)
		s.status = StatusReady
		s.err = nil
	case errors.Is(err, context.Canceled):
		s.status = previous
	default:
		s.status = StatusFailed
		s.err = err
	}
	count := len(s.videos)
	s.mu.Unlock()
	s.notify()

	if err != nil {
		slog.Warn("Failed to load catalog", "error", err)
		return err
	}
	slog.Debug("Catalog loaded", "videos", count)
	return nil
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err is the last load failure while the store is failed, nil otherwise.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusFailed {
		return nil
	}
	return s.err
}

func (s *Store) Videos() []model.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneVideos(s.videos)
}

func (s *Store) Get(id string) (model.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.videos[i].Clone(), true
	}
	return model.Video{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

// Apply replaces the video with the same id.
func (s *Store) Apply(v model.Video) error {
	s.mu.Lock()
	i := s.indexOf(v.ID)
	if i < 0 {
		s.mu.Unlock()
		return apierr.New(apierr.KindNotFound, "Video not found")
	}
	s.videos[i] = v.Clone()
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove reports whether a video was removed. Absent ids are a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.videos = append(s.videos[:i:i], s.videos[i+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// Append inserts featured videos at the head and the rest at the tail.
func (s *Store) Append(v model.Video) error {
	if v.ID == "" {
		return apierr.New(apierr.KindProtocol, "video has no id")
	}

	s.mu.Lock()
	if s.indexOf(v.ID) >= 0 {
		s.mu.Unlock()
		return apierr.New(apierr.KindConflict, "A video with this id already exists")
	}
	if v.Featured {
		s.videos = append([]model.Video{v.Clone()}, s.videos...)
	} else {
		s.videos = append(s.videos, v.Clone())
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// BumpViews increments the local view count. Unknown ids are ignored.
func (s *Store) BumpViews(id string) (int, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return 0, false
	}
	s.videos[i].Views++
	views := s.videos[i].Views
	s.mu.Unlock()

	s.notify()
	return views, true
}

// Subscribe registers fn to run after every change. fn must not block.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.videos {
		if s.videos[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueVideos drops records without an id and keeps the first occurrence
// of each id.
func uniqueVideos(videos []model.Video) []model.Video {
	seen := make(map[string]struct{}, len(videos))
	out := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if v.ID == "" {
			slog.Warn("Dropping catalog record without id", "title", v.Title)
			continue
		}
		if _, ok := seen[v.ID]; ok {
			slog.Warn("Dropping duplicate catalog record", "id", v.ID, "title", v.Title)
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v.Clone())
	}
	return out
}

func cloneVideos(videos []model.Video) []model.Video {
	out := make([]model.Video, len(videos))
	for i, v := range videos {
		out[i] = v.Clone()
	}
	return out
}
