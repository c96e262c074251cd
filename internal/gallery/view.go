package gallery

import (
	"sync"

	"folio/internal/model"
)

// Source is the part of the catalog store the view reads from.
type Source interface {
	Videos() []model.Video
	Subscribe(fn func()) (unsubscribe func())
}

type Snapshot struct {
	Category model.Category
	Items    []model.DisplayableItem
	Featured []model.DisplayableItem
	Regular  []model.DisplayableItem
}

// View recomputes its snapshot whenever the category, the project list or
// the underlying catalog changes.
type View struct {
	source      Source
	unsubscribe func()

	mu        sync.RWMutex
	category  model.Category
	projects  []model.Project
	current   Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

func NewView(source Source, category model.Category) *View {
	if category != model.CategoryAll && !category.Known() {
		category = model.CategoryAll
	}
	v := &View{
		source:    source,
		category:  category,
		listeners: make(map[int]func(Snapshot)),
	}
	v.recompute()
	v.unsubscribe = source.Subscribe(v.recompute)
	return v
}

func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

func (v *View) SetCategory(c model.Category) {
	v.mu.Lock()
	v.category = c
	v.mu.Unlock()
	v.recompute()
}

func (v *View) SetProjects(projects []model.Project) {
	v.mu.Lock()
	v.projects = append([]model.Project(nil), projects...)
	v.mu.Unlock()
	v.recompute()
}

func (v *View) Current() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// OnChange registers fn to receive every recomputed snapshot.
func (v *View) OnChange(fn func(Snapshot)) (remove func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

func (v *View) recompute() {
	videos := v.source.Videos()

	v.mu.Lock()
	items := Filter(Compose(videos, v.projects), v.category)
	featured, regular := Partition(items)
	v.current = Snapshot{
		Category: v.category,
		Items:    items,
		Featured: featured,
		Regular:  regular,
	}
	snap := v.current
	listeners := make([]func(Snapshot), 0, len(v.listeners))
	for _, fn := range v.listeners {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
