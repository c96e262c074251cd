package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"folio/internal/apierr"
	"folio/internal/model"
	"folio/pkg/httputil"
)

const uploadPath = "/api/videos/upload"

// ProgressFunc receives the share of file bytes written to the wire, in
// percent. It is called from the goroutine streaming the body.
type ProgressFunc func(percent int)

// UploadVideo streams the draft and its file as multipart/form-data.
func (c *Client) UploadVideo(ctx context.Context, token string, draft model.FormDraft, progress ProgressFunc) (model.Video, error) {
	if draft.File == nil {
		return model.Video{}, apierr.New(apierr.KindValidation, "Please select a video file")
	}

	file, err := draft.File.Open()
	if err != nil {
		return model.Video{}, fmt.Errorf("failed to open video file: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = pw.CloseWithError(writeUploadBody(writer, draft, file, progress))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, uploadPath, token, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		wg.Wait()
		return model.Video{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.send(req)
	_ = pr.Close()
	wg.Wait()
	if err != nil {
		return model.Video{}, err
	}

	var raw json.RawMessage
	if err := httputil.DecodeJSON(resp, &raw); err != nil {
		return model.Video{}, err
	}
	return decodeVideo(raw)
}

func writeUploadBody(w *multipart.Writer, draft model.FormDraft, file io.Reader, progress ProgressFunc) error {
	fields := []struct{ name, value string }{
		{"title", draft.Title},
		{"description", draft.Description},
		{"category", draft.Category.String()},
		{"technologies", model.JoinTechnologies(draft.Technologies)},
		{"businessDescription", draft.BusinessDescription},
		{"demoUrl", draft.DemoURL},
		{"githubUrl", draft.SourceURL},
		{"featured", strconv.FormatBool(draft.Featured)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, draft.File.Name))
	header.Set("Content-Type", draft.File.MIMEType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create video part: %w", err)
	}

	dst := io.Writer(part)
	if progress != nil && draft.File.Size > 0 {
		dst = &progressWriter{w: part, total: draft.File.Size, report: progress}
	}
	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("failed to copy video: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	last    int
	report  ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)

	percent := int(p.written * 100 / p.total)
	if percent > 100 {
		percent = 100
	}
	if percent > p.last {
		p.last = percent
		p.report(percent)
	}
	return n, err
}
