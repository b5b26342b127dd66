package text

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/DaanHessen/jwtviz/internal/narration"
)

// httpNarrator talks to the narration gateway. Every non-2xx status is an error.
type httpNarrator struct {
	base   string
	client *http.Client
}

func NewHTTPNarrator(baseURL string, timeout time.Duration) Narrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpNarrator{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (h *httpNarrator) Narration(ctx context.Context, step int) (string, error) {
	var out struct {
		Narration string `json:"narration"`
	}
	if err := h.do(ctx, http.MethodGet, "/api/narration/"+strconv.Itoa(step), nil, &out); err != nil {
		return "", err
	}
	return out.Narration, nil
}

func (h *httpNarrator) Ask(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", err
	}
	var out struct {
		Answer string `json:"answer"`
	}
	if err := h.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

func (h *httpNarrator) SampleToken(ctx context.Context) (narration.SampleToken, error) {
	var out narration.SampleToken
	err := h.do(ctx, http.MethodGet, "/api/token/sample", nil, &out)
	return out, err
}

func (h *httpNarrator) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.base+path, rdr)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
