package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// PostsClient maps the /posts resource family, including image generation
// and publishing.
type PostsClient struct {
	c *Client
}

func NewPostsClient(c *Client) *PostsClient {
	return &PostsClient{c: c}
}

func (p *PostsClient) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := p.c.doJSON(ctx, http.MethodGet, "/posts/", nil, false, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Create submits the compose form. The body is multipart when an image is
// attached and plain JSON otherwise. Status transitions stay server-side;
// the created post is returned as the server reports it.
func (p *PostsClient) Create(ctx context.Context, pc *transfer.PostCreation) (*models.Post, error) {
	if pc.Title == "" || pc.Content == "" {
		return nil, &ValidationError{Message: "title and content are required"}
	}
	if pc.ScheduledTime != nil && !pc.ScheduledTime.After(time.Now()) {
		return nil, &ValidationError{Message: "scheduled time must be in the future"}
	}

	var post models.Post

	if len(pc.ImageData) == 0 {
		body := map[string]any{
			"title":        pc.Title,
			"content":      pc.Content,
			"platform_ids": pc.PlatformIDs,
		}
		if pc.Status != "" {
			body["status"] = pc.Status
		}
		if pc.ScheduledTime != nil {
			body["scheduled_time"] = pc.ScheduledTime.Format(time.RFC3339)
		}
		if err := p.c.doJSON(ctx, http.MethodPost, "/posts/", body, false, &post); err != nil {
			return nil, err
		}
		return &post, nil
	}

	form := newFormPayload()
	form.addField("title", pc.Title)
	form.addField("content", pc.Content)
	if pc.Status != "" {
		form.addField("status", pc.Status)
	}
	if pc.ScheduledTime != nil {
		form.addField("scheduled_time", pc.ScheduledTime.Format(time.RFC3339))
	}
	for _, id := range pc.PlatformIDs {
		form.addField("platform_ids", strconv.FormatInt(id, 10))
	}
	form.addImage("image", pc.ImageName, pc.ImageData)

	if err := p.c.doForm(ctx, http.MethodPost, "/posts/", form, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *PostsClient) Update(ctx context.Context, id int64, patch transfer.PostPatch) (*models.Post, error) {
	var post models.Post
	endpoint := fmt.Sprintf("/posts/%d/", id)
	if err := p.c.doJSON(ctx, http.MethodPut, endpoint, patch, false, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *PostsClient) Delete(ctx context.Context, id int64) error {
	return p.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/", id), nil, false, nil)
}

// GenerateImage asks the server to render a prompt. The call is synchronous
// and can take a while; the request context bounds the wait.
func (p *PostsClient) GenerateImage(ctx context.Context, prompt string) (*transfer.GenerateImageResponse, error) {
	if prompt == "" {
		return nil, &ValidationError{Message: "prompt is required"}
	}

	var resp transfer.GenerateImageResponse
	req := transfer.GenerateImageRequest{Prompt: prompt}
	if err := p.c.doJSON(ctx, http.MethodPost, "/posts/generate_image/", req, false, &resp); err != nil {
		return nil, err
	}
	if resp.ImageBase64 == "" {
		return nil, &ValidationError{Message: "no image received from server"}
	}
	return &resp, nil
}

// Publish sends a post to the selected platform accounts and returns the
// per-platform outcomes. Partial failure is a success at this level; the
// caller partitions the results.
func (p *PostsClient) Publish(ctx context.Context, postID int64, platformIDs []int64, creds transfer.PlatformCredentials) ([]models.PublishResult, error) {
	if len(platformIDs) == 0 {
		return nil, &ValidationError{Message: "select at least one platform"}
	}

	platforms, err := json.Marshal(platformIDs)
	if err != nil {
		return nil, fmt.Errorf("error marshalling platforms: %w", err)
	}
	if creds == nil {
		creds = transfer.PlatformCredentials{}
	}
	credentials, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("error marshalling credentials: %w", err)
	}

	form := newFormPayload()
	form.addField("platforms", string(platforms))
	form.addField("credentials", string(credentials))

	var resp struct {
		Results []models.PublishResult `json:"results"`
	}
	endpoint := fmt.Sprintf("/posts/%d/publish/", postID)
	if err := p.c.doForm(ctx, http.MethodPost, endpoint, form, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (p *PostsClient) GetResults(ctx context.Context, postID int64) ([]models.PublishResult, error) {
	var results []models.PublishResult
	endpoint := fmt.Sprintf("/posts/%d/results/", postID)
	if err := p.c.doJSON(ctx, http.MethodGet, endpoint, nil, false, &results); err != nil {
		return nil, err
	}
	return results, nil
}
