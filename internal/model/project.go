package model

import "encoding/json"

type Project struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	BusinessDescription string   `json:"businessDescription,omitempty"`
	Category            Category `json:"category"`
	Technologies        []string `json:"technologies"`
	Featured            bool     `json:"featured"`
	Image               string   `json:"image,omitempty"`
	MediaURL            string   `json:"videoUrl,omitempty"`
	PosterURL           string   `json:"videoThumbnailUrl,omitempty"`
	Duration            int      `json:"duration,omitempty"`
	Views               int      `json:"views,omitempty"`
	DemoURL             string   `json:"demo,omitempty"`
	SourceURL           string   `json:"github,omitempty"`
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	var raw struct {
		alias
		LegacyID     string       `json:"_id"`
		Category     string       `json:"category"`
		Technologies Technologies `json:"technologies"`
		Duration     float64      `json:"duration"`
		Views        float64      `json:"views"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Project(raw.alias)
	if p.ID == "" {
		p.ID = raw.LegacyID
	}
	p.Category = ParseCategory(raw.Category)
	p.Technologies = []string(raw.Technologies)
	p.Duration = nonNegative(raw.Duration)
	p.Views = nonNegative(raw.Views)
	return nil
}

func (p Project) Item() DisplayableItem {
	poster := p.PosterURL
	if poster == "" {
		poster = p.Image
	}
	return DisplayableItem{
		ID:                  p.ID,
		Title:               p.Title,
		Description:         p.Description,
		BusinessDescription: p.BusinessDescription,
		Category:            p.Category,
		Technologies:        cloneStrings(p.Technologies),
		Featured:            p.Featured,
		MediaURL:            p.MediaURL,
		PosterURL:           poster,
		Image:               p.Image,
		Duration:            p.Duration,
		Views:               p.Views,
		DemoURL:             p.DemoURL,
		SourceURL:           p.SourceURL,
		Source:              SourceProject,
		HasPlayableMedia:    p.MediaURL != "",
	}
}

type Profile struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Bio          string `json:"bio"`
	Email        string `json:"email,omitempty"`
	GitHub       string `json:"github,omitempty"`
	LinkedIn     string `json:"linkedin,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type Portfolio struct {
	Profile  Profile   `json:"profile"`
	Skills   []string  `json:"skills"`
	Projects []Project `json:"projects"`
}
