package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "known", input: "CRM", want: CategoryCRM},
		{name: "hyphenated", input: "E-Commerce", want: CategoryECommerce},
		{name: "caseSensitive", input: "crm", want: CategoryOther},
		{name: "empty", input: "", want: CategoryOther},
		{name: "allSentinel", input: "all", want: CategoryOther},
		{name: "unknown", input: "Games", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryTag(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryERP, "category-erp"},
		{CategoryECommerce, "category-ecommerce"},
		{CategorySaaS, "category-saas"},
		{CategoryOther, "tag"},
		{Category("Games"), "tag"},
	}

	for _, tt := range tests {
		if got := tt.category.Tag(); got != tt.want {
			t.Errorf("%q.Tag() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestVideoUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Video
	}{
		{
			name: "legacyID",
			body: `{"_id":"abc","title":"ERP","category":"ERP","technologies":["Go"," React "],"videoUrl":"m.mp4","views":3,"duration":180.7}`,
			want: Video{ID: "abc", Title: "ERP", Category: CategoryERP, Technologies: []string{"Go", "React"}, MediaURL: "m.mp4", Views: 3, Duration: 180},
		},
		{
			name: "commaTechnologies",
			body: `{"id":"1","category":"SaaS","technologies":"Go, Postgres,,"}`,
			want: Video{ID: "1", Category: CategorySaaS, Technologies: []string{"Go", "Postgres"}},
		},
		{
			name: "unknownCategoryAndNegatives",
			body: `{"id":"2","category":"Games","views":-5,"duration":-1,"technologies":[]}`,
			want: Video{ID: "2", Category: CategoryOther, Technologies: []string{}},
		},
		{
			name: "idPreferredOverLegacy",
			body: `{"id":"new","_id":"old","category":"CRM"}`,
			want: Video{ID: "new", Category: CategoryCRM},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Video
			if err := json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVideoUnmarshalCreatedAt(t *testing.T) {
	var v Video
	if err := json.Unmarshal([]byte(`{"id":"1","createdAt":"2024-03-01T10:00:00Z"}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.CreatedAt.Year() != 2024 || v.CreatedAt.Month() != 3 {
		t.Errorf("CreatedAt = %v, want 2024-03", v.CreatedAt)
	}

	var empty Video
	if err := json.Unmarshal([]byte(`{"id":"1","createdAt":""}`), &empty); err != nil {
		t.Fatalf("Unmarshal() with empty createdAt error = %v", err)
	}
	if !empty.CreatedAt.IsZero() {
		t.Errorf("CreatedAt = %v, want zero", empty.CreatedAt)
	}
}

func TestProjectItemPoster(t *testing.T) {
	p := Project{ID: "p1", Image: "/img.png", MediaURL: "m.mp4"}
	item := p.Item()
	if item.PosterURL != "/img.png" {
		t.Errorf("PosterURL = %q, want image fallback", item.PosterURL)
	}
	if !item.HasPlayableMedia || item.Source != SourceProject {
		t.Errorf("Item() = %+v, want playable project", item)
	}

	p.PosterURL = "thumb.jpg"
	if got := p.Item().PosterURL; got != "thumb.jpg" {
		t.Errorf("PosterURL = %q, want thumb.jpg", got)
	}
}

func TestVideoPatchApplyTo(t *testing.T) {
	v := Video{ID: "1", Title: "old", MediaURL: "m.mp4", Views: 9, Category: CategoryERP}
	patched := VideoPatch{Title: "new", Category: Category("bogus"), Featured: true}.ApplyTo(v)

	if patched.Title != "new" || !patched.Featured {
		t.Errorf("ApplyTo() = %+v", patched)
	}
	if patched.MediaURL != "m.mp4" || patched.Views != 9 {
		t.Errorf("ApplyTo() changed media fields: %+v", patched)
	}
	if patched.Category != CategoryOther {
		t.Errorf("Category = %q, want Other", patched.Category)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{-3, ""},
		{5, "0:05"},
		{180, "3:00"},
		{754, "12:34"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatViews(t *testing.T) {
	tests := []struct {
		views int
		want  string
	}{
		{0, "0 views"},
		{42, "42 views"},
		{1500, "1.5K views"},
		{2_300_000, "2.3M views"},
	}

	for _, tt := range tests {
		if got := FormatViews(tt.views); got != tt.want {
			t.Errorf("FormatViews(%d) = %q, want %q", tt.views, got, tt.want)
		}
	}
}

func TestResolveAsset(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		fallback string
		want     string
	}{
		{name: "absolute", base: "https://site.dev", path: "https://cdn.dev/a.jpg", want: "https://cdn.dev/a.jpg"},
		{name: "relative", base: "https://site.dev", path: "/profile.jpg", want: "https://site.dev/profile.jpg"},
		{name: "fallback", base: "https://site.dev", path: "", fallback: "/project-default.jpg", want: "https://site.dev/project-default.jpg"},
		{name: "noBase", base: "", path: "/a.jpg", want: "/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAsset(tt.base, tt.path, tt.fallback); got != tt.want {
				t.Errorf("ResolveAsset() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShowBusinessDescription(t *testing.T) {
	item := DisplayableItem{Description: "same", BusinessDescription: "same"}
	if item.ShowBusinessDescription() {
		t.Error("ShowBusinessDescription() = true for duplicate text")
	}
	item.BusinessDescription = "longer"
	if !item.ShowBusinessDescription() {
		t.Error("ShowBusinessDescription() = false for distinct text")
	}
}

func TestMediaFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.MP4")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := MediaFileFromPath(path)
	if err != nil {
		t.Fatalf("MediaFileFromPath() error = %v", err)
	}
	if file.MIMEType != "video/mp4" {
		t.Errorf("MIMEType = %q, want video/mp4", file.MIMEType)
	}
	if file.Size != 10 || file.Name != "demo.MP4" {
		t.Errorf("MediaFile = %+v", file)
	}

	rc, err := file.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()

	if _, err := MediaFileFromPath(dir); err == nil {
		t.Error("MediaFileFromPath(dir) should fail")
	}
}

func TestParseTechnologies(t *testing.T) {
	got := ParseTechnologies(" Go,React , ,Docker")
	want := []string{"Go", "React", "Docker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTechnologies() = %v, want %v", got, want)
	}
	if JoinTechnologies(want) != "Go, React, Docker" {
		t.Errorf("JoinTechnologies() = %q", JoinTechnologies(want))
	}
}
