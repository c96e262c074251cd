// Package upload drives one admin mutation at a time: upload, edit or
// delete, with validation, progress and a terminal outcome.
package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/apierr"
	"folio/internal/gateway"
	"folio/internal/model"
	"folio/internal/progress"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

type Operation string

const (
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

var ErrBusy = errors.New("another operation is in progress")

const (
	DefaultMaxFileSize      = 100 << 20
	DefaultProgressStep     = 10
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultProgressCap      = 90

	// transportCap keeps byte-level progress below completion until the
	// server has answered.
	transportCap = progress.Max - 1
)

// Gateway is the subset of the remote client the coordinator drives.
type Gateway interface {
	UploadVideo(ctx context.Context, token string, draft model.FormDraft, progress gateway.ProgressFunc) (model.Video, error)
	UpdateVideo(ctx context.Context, token, id string, patch model.VideoPatch) error
	DeleteVideo(ctx context.Context, token, id string) error
}

type Catalog interface {
	Get(id string) (model.Video, bool)
	Append(v model.Video) error
	Apply(v model.Video) error
	Remove(id string) bool
}

// Authenticator runs fn with the current bearer token.
type Authenticator interface {
	Do(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

type Options struct {
	MaxFileSize      int64
	ProgressStep     int
	ProgressInterval time.Duration
	ProgressCap      int
}

type Snapshot struct {
	SessionID string
	Operation Operation
	State     State
	Progress  int
	Message   string
	Kind      apierr.Kind
	Err       error
	Video     *model.Video
}

// Session is one running operation.
type Session struct {
	ID        string
	Operation Operation

	progress *progress.Signal
	cancel   context.CancelFunc
}

type Coordinator struct {
	gateway Gateway
	catalog Catalog
	auth    Authenticator
	opts    Options

	// commit is held while a finished operation writes to the catalog so
	// Reset cannot interleave. Lock order: commit, deliver, mu.
	commit sync.Mutex
	// deliver keeps snapshot delivery in state order.
	deliver sync.Mutex

	mu        sync.Mutex
	current   Snapshot
	session   *Session
	observers map[int]func(Snapshot)
	nextID    int
}

func NewCoordinator(gw Gateway, catalog Catalog, auth Authenticator, opts Options) *Coordinator {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.ProgressStep <= 0 {
		opts.ProgressStep = DefaultProgressStep
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.ProgressCap <= 0 || opts.ProgressCap >= progress.Max {
		opts.ProgressCap = DefaultProgressCap
	}

	return &Coordinator{
		gateway:   gw,
		catalog:   catalog,
		auth:      auth,
		opts:      opts,
		current:   Snapshot{State: StateIdle},
		observers: make(map[int]func(Snapshot)),
	}
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Coordinator) State() State {
	return c.Snapshot().State
}

// Subscribe delivers the current snapshot and then every change. Observers
// must not call back into the coordinator.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	snap := c.current
	c.mu.Unlock()

	fn(snap)

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Reset cancels any running operation and returns to idle. A cancelled
// operation never touches the catalog.
func (c *Coordinator) Reset() {
	c.commit.Lock()
	defer c.commit.Unlock()

	c.transition(func() bool {
		if c.session != nil {
			c.session.cancel()
			c.session.progress.Freeze()
			c.session = nil
		}
		c.current = Snapshot{State: StateIdle}
		return true
	})
}

// Create validates and uploads a new video. On success the video is added
// to the catalog before the succeeded state is published.
func (c *Coordinator) Create(ctx context.Context, draft model.FormDraft) (model.Video, error) {
	return c.run(ctx, OpCreate, draft, operation{
		validate: func() error { return validateCreate(draft, c.opts.MaxFileSize) },
		simulate: true,
		call: func(ctx context.Context, token string, report func(int)) (model.Video, error) {
			return c.gateway.UploadVideo(ctx, token, draft, report)
		},
		commit:  c.catalog.Append,
		success: "Video uploaded successfully!",
	})
}

// Edit sends the draft's fields as a patch. The file cannot change.
func (c *Coordinator) Edit(ctx context.Context, draft model.FormDraft) (model.Video, error) {
	var existing model.Video
	return c.run(ctx, OpEdit, draft, operation{
		validate: func() error {
			if err := validateEdit(draft); err != nil {
				return err
			}
			v, ok := c.catalog.Get(draft.EditingID)
			if !ok {
				return apierr.New(apierr.KindValidation, "Video not found in catalog")
			}
			existing = v
			return nil
		},
		call: func(ctx context.Context, token string, _ func(int)) (model.Video, error) {
			patch := draft.Patch()
			if err := c.gateway.UpdateVideo(ctx, token, draft.EditingID, patch); err != nil {
				return model.Video{}, err
			}
			return patch.ApplyTo(existing), nil
		},
		commit:  c.applyEdit,
		success: "Video updated successfully!",
	})
}

// applyEdit mirrors a saved edit locally. The server already holds the
// change, so a video that left the catalog meanwhile is not a failure.
func (c *Coordinator) applyEdit(v model.Video) error {
	err := c.catalog.Apply(v)
	if errors.Is(err, apierr.ErrNotFound) {
		slog.Warn("Edited video no longer in catalog", "id", v.ID)
		return nil
	}
	return err
}

// Delete removes a video. Unless blind is set, id must resolve in the
// catalog.
func (c *Coordinator) Delete(ctx context.Context, id string, blind bool) error {
	_, err := c.run(ctx, OpDelete, model.FormDraft{EditingID: id}, operation{
		validate: func() error {
			if id == "" {
				return apierr.New(apierr.KindValidation, "Missing video id")
			}
			if _, ok := c.catalog.Get(id); !ok && !blind {
				return apierr.New(apierr.KindValidation, "Video not found in catalog")
			}
			return nil
		},
		call: func(ctx context.Context, token string, _ func(int)) (model.Video, error) {
			return model.Video{ID: id}, c.gateway.DeleteVideo(ctx, token, id)
		},
		commit: func(v model.Video) error {
			c.catalog.Remove(v.ID)
			return nil
		},
		success: "Video deleted successfully!",
	})
	return err
}

type operation struct {
	validate func() error
	simulate bool
	call     func(ctx context.Context, token string, report func(int)) (model.Video, error)
	commit   func(model.Video) error
	success  string
}

func (c *Coordinator) run(ctx context.Context, op Operation, draft model.FormDraft, o operation) (model.Video, error) {
	if err := c.begin(op); err != nil {
		return model.Video{}, err
	}

	if err := o.validate(); err != nil {
		c.transition(func() bool {
			c.current = Snapshot{
				Operation: op,
				State:     StateIdle,
				Message:   apierr.Message(err),
				Kind:      apierr.KindOf(err),
				Err:       err,
			}
			return true
		})
		return model.Video{}, err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &Session{
		ID:        uuid.NewString(),
		Operation: op,
		progress:  progress.NewSignal(),
		cancel:    cancel,
	}
	c.transition(func() bool {
		c.session = sess
		c.current = Snapshot{SessionID: sess.ID, Operation: op, State: StateRunning}
		return true
	})
	slog.Debug("Operation started", "session", sess.ID, "op", op, "title", draft.Title)

	unsubscribe := sess.progress.Subscribe(func(p int) { c.onProgress(sess, p) })
	defer unsubscribe()

	stop := func() {}
	if o.simulate {
		stop = progress.Simulate(sessCtx, sess.progress, c.opts.ProgressStep, c.opts.ProgressInterval, c.opts.ProgressCap)
	}

	var result model.Video
	err := c.auth.Do(sessCtx, func(ctx context.Context, token string) error {
		var err error
		result, err = o.call(ctx, token, func(p int) {
			if p > transportCap {
				p = transportCap
			}
			sess.progress.Publish(p)
		})
		return err
	})
	stop()

	c.commit.Lock()
	c.mu.Lock()
	live := c.session == sess && sessCtx.Err() == nil
	c.mu.Unlock()
	if live && err == nil {
		err = o.commit(result)
	}
	c.commit.Unlock()

	if !live {
		sess.progress.Freeze()
		c.abandon(sess)
		slog.Debug("Operation cancelled", "session", sess.ID, "op", op)
		if ctxErr := sessCtx.Err(); ctxErr != nil {
			return model.Video{}, ctxErr
		}
		return model.Video{}, context.Canceled
	}

	if err != nil {
		sess.progress.Freeze()
		c.finish(sess, Snapshot{
			State:   StateFailed,
			Message: apierr.Message(err),
			Kind:    apierr.KindOf(err),
			Err:     err,
		})
		slog.Warn("Operation failed", "session", sess.ID, "op", op, "error", err)
		return model.Video{}, err
	}

	sess.progress.Publish(progress.Max)
	sess.progress.Freeze()
	video := result
	c.finish(sess, Snapshot{
		State:   StateSucceeded,
		Message: o.success,
		Video:   &video,
	})
	slog.Info("Operation succeeded", "session", sess.ID, "op", op, "video", result.ID)
	return result, nil
}

// begin moves idle (or a finished state) to validating.
func (c *Coordinator) begin(op Operation) error {
	var err error
	c.transition(func() bool {
		switch c.current.State {
		case StateValidating, StateRunning:
			err = ErrBusy
			return false
		}
		c.session = nil
		c.current = Snapshot{Operation: op, State: StateValidating}
		return true
	})
	return err
}

func (c *Coordinator) onProgress(sess *Session, p int) {
	c.transition(func() bool {
		if c.session != sess || c.current.State != StateRunning {
			return false
		}
		c.current.Progress = p
		return true
	})
}

func (c *Coordinator) finish(sess *Session, snap Snapshot) {
	c.transition(func() bool {
		if c.session != sess {
			return false
		}
		snap.SessionID = sess.ID
		snap.Operation = sess.Operation
		snap.Progress = sess.progress.Latest()
		c.current = snap
		return true
	})
}

// abandon returns to idle when the caller's context ended the session.
func (c *Coordinator) abandon(sess *Session) {
	c.transition(func() bool {
		if c.session != sess {
			return false
		}
		c.session = nil
		c.current = Snapshot{State: StateIdle}
		return true
	})
}

// transition applies mutate under the state lock and, when it reports a
// change, delivers the new snapshot to every observer.
func (c *Coordinator) transition(mutate func() bool) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	if !mutate() {
		c.mu.Unlock()
		return
	}
	snap := c.current
	observers := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
