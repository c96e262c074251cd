package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"folio/internal/apierr"
	"folio/internal/model"
)

const videosPath = "/api/videos"

func videoPath(id string) string {
	return videosPath + "/" + url.PathEscape(id)
}

func (c *Client) ListVideos(ctx context.Context) ([]model.Video, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, videosPath, "", nil, &raw); err != nil {
		return nil, err
	}

	var videos []model.Video
	if err := json.Unmarshal(raw, &videos); err != nil {
		var wrapped struct {
			Videos []model.Video `json:"videos"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil || wrapped.Videos == nil {
			return nil, apierr.Wrap(apierr.KindProtocol, "expected a list of videos", err)
		}
		videos = wrapped.Videos
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

func (c *Client) GetVideo(ctx context.Context, id string) (model.Video, error) {
	if id == "" {
		return model.Video{}, apierr.New(apierr.KindValidation, "video id is required")
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, videoPath(id), "", nil, &raw); err != nil {
		return model.Video{}, err
	}
	return decodeVideo(raw)
}

// UpdateVideo sends the patch as JSON. Technologies go over the wire as an
// array; the response body is not used.
func (c *Client) UpdateVideo(ctx context.Context, token, id string, patch model.VideoPatch) error {
	if id == "" {
		return apierr.New(apierr.KindValidation, "video id is required")
	}
	if patch.Technologies == nil {
		patch.Technologies = []string{}
	}
	return c.doJSON(ctx, http.MethodPut, videoPath(id), token, patch, nil)
}

func (c *Client) DeleteVideo(ctx context.Context, token, id string) error {
	if id == "" {
		return apierr.New(apierr.KindValidation, "video id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, videoPath(id), token, nil, nil)
}

// IncrementView is best effort; callers are expected to log and move on.
func (c *Client) IncrementView(ctx context.Context, id string) error {
	if id == "" {
		return apierr.New(apierr.KindValidation, "video id is required")
	}
	return c.doJSON(ctx, http.MethodPost, videoPath(id)+"/view", "", nil, nil)
}

// decodeVideo accepts a bare video object or one wrapped as {"video": {...}}.
func decodeVideo(raw json.RawMessage) (model.Video, error) {
	var wrapped struct {
		Video *model.Video `json:"video"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Video != nil {
		return *wrapped.Video, nil
	}

	var v model.Video
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.Video{}, apierr.Wrap(apierr.KindProtocol, "failed to parse video", err)
	}
	if v.ID == "" {
		return model.Video{}, apierr.New(apierr.KindProtocol, "video response has no id")
	}
	return v, nil
}
