// Package playback owns the single modal player: the selected item, the
// background scroll lock and the escape handler.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"folio/internal/apierr"
	"folio/internal/model"
)

type Region string

const (
	RegionBackdrop Region = "backdrop"
	RegionContent  Region = "content"
)

var (
	ErrNoMedia  = apierr.New(apierr.KindValidation, "This item has no playable media")
	ErrShutdown = errors.New("playback controller is shut down")
)

type ViewCounter interface {
	IncrementView(ctx context.Context, id string) error
}

type ViewRecorder interface {
	BumpViews(id string) (int, bool)
}

type Controller struct {
	doc      Document
	counter  ViewCounter
	recorder ViewRecorder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	shutdown  bool
	item      *model.DisplayableItem
	release   func()
	removeKey func()
	onChange  func(*model.DisplayableItem)
}

// NewController wires the modal to doc. recorder may be nil when no local
// catalog should follow view increments.
func NewController(doc Document, counter ViewCounter, recorder ViewRecorder) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		doc:      doc,
		counter:  counter,
		recorder: recorder,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnChange registers a callback fired after every open and close with the
// selected item, or nil when closed.
func (c *Controller) OnChange(fn func(*model.DisplayableItem)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Open shows item, closing whatever was open first.
func (c *Controller) Open(item model.DisplayableItem) error {
	if !item.HasPlayableMedia {
		return ErrNoMedia
	}

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return ErrShutdown
	}
	closed := c.closeLocked()
	selected := item
	c.item = &selected
	c.release = c.doc.LockScroll()
	c.removeKey = c.doc.OnKey(KeyEscape, c.Close)
	onChange := c.onChange
	count := c.counts(item)
	if count {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if onChange != nil {
		if closed {
			onChange(nil)
		}
		onChange(&selected)
	}
	slog.Debug("Modal opened", "id", item.ID, "source", item.Source)

	if count {
		go c.countView(item)
	}
	return nil
}

// Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	closed := c.closeLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if closed && onChange != nil {
		onChange(nil)
	}
}

func (c *Controller) closeLocked() bool {
	if c.item == nil {
		return false
	}
	slog.Debug("Modal closed", "id", c.item.ID)
	c.item = nil
	if c.removeKey != nil {
		c.removeKey()
		c.removeKey = nil
	}
	if c.release != nil {
		c.release()
		c.release = nil
	}
	return true
}

// Click closes the modal only when the backdrop itself was hit.
func (c *Controller) Click(region Region) {
	if region == RegionBackdrop {
		c.Close()
	}
}

func (c *Controller) Current() (model.DisplayableItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.item == nil {
		return model.DisplayableItem{}, false
	}
	return *c.item, true
}

func (c *Controller) IsOpen() bool {
	_, ok := c.Current()
	return ok
}

// Shutdown closes the modal, cancels pending view increments and waits for
// them to return.
// Later Opens fail with ErrShutdown.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	closed := c.closeLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if closed && onChange != nil {
		onChange(nil)
	}
	c.cancel()
	c.wg.Wait()
}

// counts reports whether opening item fires a view increment. Only catalog
// videos have a server-side counter.
func (c *Controller) counts(item model.DisplayableItem) bool {
	return c.counter != nil && item.Source == model.SourceVideo && item.ID != ""
}

// countView runs the best-effort increment. The caller has already added it
// to wg.
func (c *Controller) countView(item model.DisplayableItem) {
	defer c.wg.Done()

	if err := c.counter.IncrementView(c.ctx, item.ID); err != nil {
		if c.ctx.Err() == nil {
			slog.Warn("Failed to increment view count", "id", item.ID, "error", err)
		}
		return
	}
	if c.ctx.Err() != nil || c.recorder == nil {
		return
	}
	if views, ok := c.recorder.BumpViews(item.ID); ok {
		slog.Debug("View counted", "id", item.ID, "views", views)
	}
}
