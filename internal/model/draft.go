package model

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MediaFile is a pending file selected for upload.
type MediaFile struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// MediaFileFromPath stats a local file and detects its MIME type from the
// extension.
func MediaFileFromPath(path string) (*MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat media file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("media file %s is a directory", path)
	}

	return &MediaFile{
		Name:     filepath.Base(path),
		MIMEType: DetectMIMEType(path),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

var videoMIMETypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
}

func DetectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := videoMIMETypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mediaType
		}
		return ct
	}
	return "application/octet-stream"
}

// FormDraft is the transient state of the upload/edit form.
type FormDraft struct {
	EditingID           string
	Title               string
	Description         string
	BusinessDescription string
	Category            Category
	Technologies        []string
	DemoURL             string
	SourceURL           string
	Featured            bool
	File                *MediaFile
}

func (d FormDraft) IsEdit() bool {
	return d.EditingID != ""
}

func (d FormDraft) Patch() VideoPatch {
	return VideoPatch{
		Title:               strings.TrimSpace(d.Title),
		Description:         strings.TrimSpace(d.Description),
		BusinessDescription: strings.TrimSpace(d.BusinessDescription),
		Category:            d.Category,
		Technologies:        cloneStrings(d.Technologies),
		DemoURL:             strings.TrimSpace(d.DemoURL),
		SourceURL:           strings.TrimSpace(d.SourceURL),
		Featured:            d.Featured,
	}
}

// DraftFromVideo pre-fills an edit form.
func DraftFromVideo(v Video) FormDraft {
	return FormDraft{
		EditingID:           v.ID,
		Title:               v.Title,
		Description:         v.Description,
		BusinessDescription: v.BusinessDescription,
		Category:            v.Category,
		Technologies:        cloneStrings(v.Technologies),
		DemoURL:             v.DemoURL,
		SourceURL:           v.SourceURL,
		Featured:            v.Featured,
	}
}

type Admin struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (a Admin) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
