package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/postflow-cli/internal/session"
)

// Client dispatches HTTP requests against the PostFlow API. The session
// store is injected at construction so callers and tests control token
// lifecycle; there is no package-level state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    session.Store
}

func New(baseURL string, store session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		session: store,
	}
}

// doJSON sends a JSON request and decodes the JSON response into out when
// out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, anonymous bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshalling payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.do(ctx, method, endpoint, reader, "application/json", anonymous, out)
}

// formPayload is a multipart body under construction. Field order is
// preserved; repeated keys become repeated parts.
type formPayload struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newFormPayload() *formPayload {
	p := &formPayload{}
	p.writer = multipart.NewWriter(&p.buf)
	return p
}

func (p *formPayload) addField(key, value string) {
	if p.err != nil {
		return
	}
	p.err = p.writer.WriteField(key, value)
}

// addImage attaches an image file part. The payload is content-sniffed; a
// part that is not a recognizable image is rejected before anything is sent.
func (p *formPayload) addImage(fieldName, fileName string, data []byte) {
	if p.err != nil {
		return
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		p.err = &ValidationError{Message: fmt.Sprintf("%s is not a supported image file", fileName)}
		return
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", kind.MIME.Value)

	part, err := p.writer.CreatePart(header)
	if err != nil {
		p.err = err
		return
	}
	_, p.err = part.Write(data)
}

func (p *formPayload) close() error {
	if p.err != nil {
		return p.err
	}
	return p.writer.Close()
}

// doForm sends a multipart request. The content type, including the
// boundary, comes from the multipart writer.
func (c *Client) doForm(ctx context.Context, method, endpoint string, form *formPayload, out any) error {
	if err := form.close(); err != nil {
		return err
	}
	return c.do(ctx, method, endpoint, &form.buf, form.writer.FormDataContentType(), false, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, anonymous bool, out any) error {
	var token string
	if !anonymous {
		token = c.session.CurrentToken()
		if token == "" {
			return ErrNotAuthenticated
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !anonymous {
		// Implicit session expiry: the stored token is no longer valid.
		if err := c.session.ClearToken(); err != nil {
			slog.Error("failed to clear expired session", "error", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &ValidationError{Message: fmt.Sprintf("unexpected response shape from %s: %v", endpoint, err)}
		}
	}

	return nil
}
