// Package gallery merges the video catalog with the static project list and
// derives the filtered, featured/regular views.
package gallery

import "folio/internal/model"

// Compose emits videos not covered by a project's media URL, then every
// project. Both keep their input order.
func Compose(videos []model.Video, projects []model.Project) []model.DisplayableItem {
	covered := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		if p.MediaURL != "" {
			covered[p.MediaURL] = struct{}{}
		}
	}

	items := make([]model.DisplayableItem, 0, len(videos)+len(projects))
	for _, v := range videos {
		if v.MediaURL != "" {
			if _, ok := covered[v.MediaURL]; ok {
				continue
			}
		}
		items = append(items, v.Item())
	}
	for _, p := range projects {
		items = append(items, p.Item())
	}
	return items
}

// Filter keeps items whose category equals c exactly. CategoryAll keeps all.
func Filter(items []model.DisplayableItem, c model.Category) []model.DisplayableItem {
	if c == model.CategoryAll {
		return append([]model.DisplayableItem(nil), items...)
	}

	out := make([]model.DisplayableItem, 0, len(items))
	for _, item := range items {
		if item.Category == c {
			out = append(out, item)
		}
	}
	return out
}

func Partition(items []model.DisplayableItem) (featured, regular []model.DisplayableItem) {
	featured = make([]model.DisplayableItem, 0)
	regular = make([]model.DisplayableItem, 0, len(items))
	for _, item := range items {
		if item.Featured {
			featured = append(featured, item)
		} else {
			regular = append(regular, item)
		}
	}
	return featured, regular
}

// FindItem looks up an item by id, preferring videos over projects.
func FindItem(items []model.DisplayableItem, id string) (model.DisplayableItem, bool) {
	var fallback *model.DisplayableItem
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if items[i].Source == model.SourceVideo {
			return items[i], true
		}
		if fallback == nil {
			fallback = &items[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return model.DisplayableItem{}, false
}
