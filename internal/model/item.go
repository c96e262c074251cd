package model

import "time"

type Source string

const (
	SourceVideo   Source = "video"
	SourceProject Source = "project"
)

// DisplayableItem is the merged view of a Video or a Project.
type DisplayableItem struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	BusinessDescription string    `json:"businessDescription,omitempty"`
	Category            Category  `json:"category"`
	Technologies        []string  `json:"technologies"`
	Featured            bool      `json:"featured"`
	MediaURL            string    `json:"videoUrl,omitempty"`
	PosterURL           string    `json:"posterUrl,omitempty"`
	Image               string    `json:"image,omitempty"`
	Duration            int       `json:"duration,omitempty"`
	Views               int       `json:"views"`
	DemoURL             string    `json:"demoUrl,omitempty"`
	SourceURL           string    `json:"githubUrl,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
	Source              Source    `json:"source"`
	HasPlayableMedia    bool      `json:"hasPlayableMedia"`
}

// ShowBusinessDescription reports whether the long-form description adds
// anything over the short one.
func (i DisplayableItem) ShowBusinessDescription() bool {
	return i.BusinessDescription != "" && i.BusinessDescription != i.Description
}
