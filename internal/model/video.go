package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

type Video struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	BusinessDescription string    `json:"businessDescription,omitempty"`
	Category            Category  `json:"category"`
	Technologies        []string  `json:"technologies"`
	Featured            bool      `json:"featured"`
	MediaURL            string    `json:"videoUrl"`
	PosterURL           string    `json:"thumbnailUrl,omitempty"`
	Duration            int       `json:"duration"`
	Views               int       `json:"views"`
	DemoURL             string    `json:"demoUrl,omitempty"`
	SourceURL           string    `json:"githubUrl,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON accepts both `_id` and `id`, technologies as an array or a
// comma separated string, and normalizes category, duration and views.
func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var raw struct {
		alias
		LegacyID     string       `json:"_id"`
		Category     string       `json:"category"`
		Technologies Technologies `json:"technologies"`
		Duration     float64      `json:"duration"`
		Views        float64      `json:"views"`
		CreatedAt    string       `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*v = Video(raw.alias)
	if v.ID == "" {
		v.ID = raw.LegacyID
	}
	v.Category = ParseCategory(raw.Category)
	v.Technologies = []string(raw.Technologies)
	v.Duration = nonNegative(raw.Duration)
	v.Views = nonNegative(raw.Views)
	v.CreatedAt = parseTimestamp(raw.CreatedAt)
	return nil
}

func (v Video) HasMedia() bool {
	return v.MediaURL != ""
}

// Item converts the video into its displayable form.
func (v Video) Item() DisplayableItem {
	return DisplayableItem{
		ID:                  v.ID,
		Title:               v.Title,
		Description:         v.Description,
		BusinessDescription: v.BusinessDescription,
		Category:            v.Category,
		Technologies:        cloneStrings(v.Technologies),
		Featured:            v.Featured,
		MediaURL:            v.MediaURL,
		PosterURL:           v.PosterURL,
		Image:               v.PosterURL,
		Duration:            v.Duration,
		Views:               v.Views,
		DemoURL:             v.DemoURL,
		SourceURL:           v.SourceURL,
		CreatedAt:           v.CreatedAt,
		Source:              SourceVideo,
		HasPlayableMedia:    v.HasMedia(),
	}
}

func (v Video) Clone() Video {
	v.Technologies = cloneStrings(v.Technologies)
	return v
}

// VideoPatch is the set of non-media fields an edit may change.
type VideoPatch struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	BusinessDescription string   `json:"businessDescription"`
	Category            Category `json:"category"`
	Technologies        []string `json:"technologies"`
	DemoURL             string   `json:"demoUrl"`
	SourceURL           string   `json:"githubUrl"`
	Featured            bool     `json:"featured"`
}

// ApplyTo returns a copy of v with the patch fields replaced.
func (p VideoPatch) ApplyTo(v Video) Video {
	v = v.Clone()
	v.Title = p.Title
	v.Description = p.Description
	v.BusinessDescription = p.BusinessDescription
	v.Category = ParseCategory(string(p.Category))
	v.Technologies = cloneStrings(p.Technologies)
	v.DemoURL = p.DemoURL
	v.SourceURL = p.SourceURL
	v.Featured = p.Featured
	return v
}

// Technologies decodes from either a JSON array or a comma separated string.
type Technologies []string

func (t *Technologies) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTechnologies(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = ParseTechnologies(joined)
	return nil
}

// ParseTechnologies splits a comma separated list, dropping blanks.
func ParseTechnologies(s string) []string {
	return cleanTechnologies(strings.Split(s, ","))
}

func JoinTechnologies(list []string) string {
	return strings.Join(list, ", ")
}

func cleanTechnologies(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonNegative(f float64) int {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
