package upload

import (
	"fmt"
	"strings"

	"folio/internal/apierr"
	"folio/internal/model"
)

var allowedMIMETypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

func validateFields(d model.FormDraft) error {
	if strings.TrimSpace(d.Title) == "" {
		return apierr.New(apierr.KindValidation, "Title is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return apierr.New(apierr.KindValidation, "Description is required")
	}
	if !d.Category.Known() {
		return apierr.New(apierr.KindValidation, fmt.Sprintf("Unknown category %q", d.Category))
	}
	return nil
}

func validateCreate(d model.FormDraft, maxSize int64) error {
	if d.IsEdit() {
		return apierr.New(apierr.KindValidation, "A new upload cannot carry an id")
	}
	if err := validateFields(d); err != nil {
		return err
	}
	return validateFile(d.File, maxSize)
}

func validateEdit(d model.FormDraft) error {
	if !d.IsEdit() {
		return apierr.New(apierr.KindValidation, "Missing video id")
	}
	if d.File != nil {
		return apierr.New(apierr.KindValidation, "The video file cannot be replaced when editing")
	}
	return validateFields(d)
}

func validateFile(f *model.MediaFile, maxSize int64) error {
	if f == nil || f.Open == nil {
		return apierr.New(apierr.KindValidation, "Please select a video file")
	}

	mimeType := f.MIMEType
	if mimeType == "" {
		mimeType = model.DetectMIMEType(f.Name)
		f.MIMEType = mimeType
	}
	if !allowedMIMETypes[mimeType] {
		return apierr.New(apierr.KindUnsupportedMedia, fmt.Sprintf("Unsupported file type %s, use MP4, WebM or MOV", mimeType))
	}

	if f.Size <= 0 {
		return apierr.New(apierr.KindValidation, "The selected file is empty")
	}
	if maxSize > 0 && f.Size >= maxSize {
		return apierr.New(apierr.KindPayloadTooLarge, fmt.Sprintf("File is too large (max %d MB)", maxSize>>20))
	}
	return nil
}
