package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/apierr"
	"folio/internal/model"
)

type fakeFetcher struct {
	calls  atomic.Int32
	gate   chan struct{}
	videos []model.Video
	err    error
}

func (f *fakeFetcher) ListVideos(ctx context.Context) ([]model.Video, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.videos, f.err
}

func sampleVideos() []model.Video {
	return []model.Video{
		{ID: "erp", Title: "ERP", Category: model.CategoryERP, Featured: true, MediaURL: "https://cdn/erp.mp4"},
		{ID: "crm", Title: "CRM", Category: model.CategoryCRM, MediaURL: "https://cdn/crm.mp4"},
		{ID: "admin", Title: "Admin", Category: model.CategoryAdmin, MediaURL: "https://cdn/admin.mp4"},
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(&fakeFetcher{videos: sampleVideos()})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func ids(videos []model.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    *fakeFetcher
		wantStatus Status
		wantIDs    []string
		wantErr    bool
	}{
		{
			name:       "ready",
			fetcher:    &fakeFetcher{videos: sampleVideos()},
			wantStatus: StatusReady,
			wantIDs:    []string{"erp", "crm", "admin"},
		},
		{
			name:       "failed",
			fetcher:    &fakeFetcher{err: apierr.FromStatus(500, "")},
			wantStatus: StatusFailed,
			wantIDs:    []string{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.fetcher)
			if s.Status() != StatusIdle {
				t.Fatalf("initial status = %s", s.Status())
			}

			err := s.Load(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s.Status() != tt.wantStatus {
				t.Errorf("status = %s, want %s", s.Status(), tt.wantStatus)
			}
			if (s.Err() != nil) != tt.wantErr {
				t.Errorf("Err() = %v", s.Err())
			}
			if got := ids(s.Videos()); !equalIDs(got, tt.wantIDs) {
				t.Errorf("videos = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestLoadRecoversAfterFailure(t *testing.T) {
	f := &fakeFetcher{err: apierr.FromStatus(503, "")}
	s := NewStore(f)
	_ = s.Load(context.Background())
	if s.Status() != StatusFailed {
		t.Fatalf("status = %s", s.Status())
	}

	f.err = nil
	f.videos = sampleVideos()
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Status() != StatusReady || s.Err() != nil {
		t.Errorf("status = %s, err = %v", s.Status(), s.Err())
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d", s.Len())
	}
}

func TestLoadFailureKeepsPreviousVideos(t *testing.T) {
	f := &fakeFetcher{videos: sampleVideos()}
	s := NewStore(f)
	_ = s.Load(context.Background())

	f.err = apierr.FromStatus(500, "")
	_ = s.Load(context.Background())
	if s.Status() != StatusFailed {
		t.Fatalf("status = %s", s.Status())
	}
	if s.Len() != 3 {
		t.Errorf("failed reload should not clear videos, Len() = %d", s.Len())
	}
}

func TestLoadCoalesces(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{}), videos: sampleVideos()}
	s := NewStore(f)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Load(context.Background())
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d error = %v", i, err)
		}
	}
}

func TestLoadCallerContext(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{}), videos: sampleVideos()}
	s := NewStore(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Load(ctx) }()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v", err)
	}

	close(f.gate)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Status() != StatusReady {
		t.Errorf("status = %s", s.Status())
	}
}

func TestCloseCancelsLoad(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{}), videos: sampleVideos()}
	s := NewStore(f)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Status() != StatusLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Close()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("status = %s, want idle", s.Status())
	}
	if s.Len() != 0 {
		t.Errorf("cancelled load mutated videos")
	}
}

func TestLoadKeepsIDsUnique(t *testing.T) {
	tests := []struct {
		name    string
		videos  []model.Video
		wantIDs []string
	}{
		{
			name:    "duplicateKeepsFirst",
			videos:  []model.Video{{ID: "a", Title: "one"}, {ID: "b", Title: "bee"}, {ID: "a", Title: "two"}},
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "missingIDDropped",
			videos:  []model.Video{{ID: "", Title: "noid"}, {ID: "a", Title: "one"}},
			wantIDs: []string{"a"},
		},
		{
			name:    "mixed",
			videos:  []model.Video{{ID: "a", Title: "one"}, {ID: "a", Title: "two"}, {ID: "", Title: "noid"}},
			wantIDs: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(&fakeFetcher{videos: tt.videos})
			defer s.Close()
			if err := s.Load(context.Background()); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := ids(s.Videos()); !equalIDs(got, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
			if got, _ := s.Get("a"); got.Title != "one" {
				t.Errorf("Get(a).Title = %q, want first occurrence", got.Title)
			}
		})
	}
}

func TestApplyAfterDuplicateLoad(t *testing.T) {
	s := NewStore(&fakeFetcher{videos: []model.Video{{ID: "a", Title: "one"}, {ID: "a", Title: "two"}, {Title: "noid"}}})
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := s.Apply(model.Video{ID: "a", Title: "patched"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	videos := s.Videos()
	if len(videos) != 1 || videos[0].Title != "patched" {
		t.Errorf("videos = %+v, want a single patched record", videos)
	}
}

func TestApply(t *testing.T) {
	s := loadedStore(t)

	updated, _ := s.Get("crm")
	updated.Title = "CRM v2"
	if err := s.Apply(updated); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got, _ := s.Get("crm"); got.Title != "CRM v2" {
		t.Errorf("title = %q", got.Title)
	}
	if got := ids(s.Videos()); !equalIDs(got, []string{"erp", "crm", "admin"}) {
		t.Errorf("order changed: %v", got)
	}

	err := s.Apply(model.Video{ID: "missing"})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Errorf("Apply(missing) error = %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := loadedStore(t)

	if !s.Remove("crm") {
		t.Error("Remove(crm) = false")
	}
	if s.Remove("crm") {
		t.Error("second Remove(crm) = true")
	}
	if got := ids(s.Videos()); !equalIDs(got, []string{"erp", "admin"}) {
		t.Errorf("videos = %v", got)
	}
}

func TestAppend(t *testing.T) {
	tests := []struct {
		name     string
		video    model.Video
		wantIDs  []string
		wantKind apierr.Kind
	}{
		{
			name:    "featuredAtHead",
			video:   model.Video{ID: "new", Featured: true},
			wantIDs: []string{"new", "erp", "crm", "admin"},
		},
		{
			name:    "regularAtTail",
			video:   model.Video{ID: "new"},
			wantIDs: []string{"erp", "crm", "admin", "new"},
		},
		{
			name:     "duplicateConflicts",
			video:    model.Video{ID: "crm"},
			wantIDs:  []string{"erp", "crm", "admin"},
			wantKind: apierr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedStore(t)
			err := s.Append(tt.video)
			if got := apierr.KindOf(err); got != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got, tt.wantKind)
			}
			if got := ids(s.Videos()); !equalIDs(got, tt.wantIDs) {
				t.Errorf("videos = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestBumpViewsMonotonic(t *testing.T) {
	s := loadedStore(t)

	var wg sync.WaitGroup
	results := make(chan int, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, ok := s.BumpViews("crm"); ok {
				results <- v
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for v := range results {
		if seen[v] {
			t.Fatalf("view count %d returned twice", v)
		}
		seen[v] = true
	}
	if got, _ := s.Get("crm"); got.Views != 50 {
		t.Errorf("views = %d, want 50", got.Views)
	}

	last := 0
	for range 5 {
		v, _ := s.BumpViews("crm")
		if v <= last {
			t.Fatalf("views went from %d to %d", last, v)
		}
		last = v
	}

	if _, ok := s.BumpViews("missing"); ok {
		t.Error("BumpViews(missing) reported ok")
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore(&fakeFetcher{videos: sampleVideos()})

	var count atomic.Int32
	unsubscribe := s.Subscribe(func() { count.Add(1) })

	_ = s.Load(context.Background())
	if count.Load() < 2 {
		t.Errorf("expected loading and ready notifications, got %d", count.Load())
	}

	before := count.Load()
	s.BumpViews("erp")
	if count.Load() != before+1 {
		t.Errorf("BumpViews did not notify")
	}

	unsubscribe()
	s.Remove("erp")
	if count.Load() != before+1 {
		t.Errorf("notified after unsubscribe")
	}
}

func TestVideosSnapshotIsolated(t *testing.T) {
	s := loadedStore(t)
	videos := s.Videos()
	videos[0].Title = "mutated"
	if got, _ := s.Get("erp"); got.Title == "mutated" {
		t.Error("snapshot shares memory with store")
	}
}
