package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"folio/internal/apierr"
)

const maxErrorBody = 64 << 10

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// DecodeJSON reads resp and decodes a 2xx body into v. Non-2xx statuses are
// classified with apierr.FromStatus; an unparseable 2xx body is a protocol
// error. v may be nil when the body is irrelevant.
func DecodeJSON(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()

	if !IsSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apierr.FromStatus(resp.StatusCode, ErrorMessage(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Wrap(apierr.KindNetwork, "failed to read response", err)
	}

	if v == nil {
		return nil
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apierr.New(apierr.KindProtocol, "empty response body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apierr.Wrap(apierr.KindProtocol, "failed to parse response", err)
	}
	return nil
}

// Discard drains and closes resp, returning a classified error for non-2xx.
func Discard(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if !IsSuccess(resp.StatusCode) {
		return apierr.FromStatus(resp.StatusCode, ErrorMessage(body))
	}
	return nil
}

// ErrorMessage extracts a human-readable `error` or `message` field from a
// JSON error body. `error` may be a string or an object with a message.
func ErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(eb.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return eb.Message
}

// TransportError classifies a failure from http.Client.Do.
func TransportError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return apierr.Wrap(apierr.KindNetwork, "", fmt.Errorf("failed to send request: %w", err))
}

func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
