package playback

import "sync"

const KeyEscape = "Escape"

// Document is the host surface the modal attaches to.
type Document interface {
	// LockScroll suspends background scrolling until release is called.
	LockScroll() (release func())
	// OnKey installs a global key handler until remove is called.
	OnKey(key string, fn func()) (remove func())
}

// HeadlessDocument is an in-memory Document. Press dispatches to the
// installed handlers.
type HeadlessDocument struct {
	mu       sync.Mutex
	locks    int
	handlers map[string]map[int]func()
	nextID   int
}

func NewHeadlessDocument() *HeadlessDocument {
	return &HeadlessDocument{handlers: make(map[string]map[int]func())}
}

func (d *HeadlessDocument) LockScroll() func() {
	d.mu.Lock()
	d.locks++
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			d.locks--
			d.mu.Unlock()
		})
	}
}

func (d *HeadlessDocument) ScrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locks > 0
}

func (d *HeadlessDocument) OnKey(key string, fn func()) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	if d.handlers[key] == nil {
		d.handlers[key] = make(map[int]func())
	}
	d.handlers[key][id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.handlers[key], id)
		d.mu.Unlock()
	}
}

func (d *HeadlessDocument) Handlers(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[key])
}

// Press runs every handler for key outside the document lock.
func (d *HeadlessDocument) Press(key string) {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.handlers[key]))
	for _, fn := range d.handlers[key] {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
