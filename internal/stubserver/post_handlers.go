package stubserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/filetype"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (s *Server) ListPosts(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(s.store.ListPosts(getUserID(c)))
}

func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := getUserID(c)

	var post models.Post
	if strings.HasPrefix(c.Get("Content-Type"), "multipart/") {
		parsed, err := s.parseMultipartPost(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		post = *parsed
	} else {
		var body struct {
			Title         string  `json:"title"`
			Content       string  `json:"content"`
			PlatformIDs   []int64 `json:"platform_ids"`
			ScheduledTime string  `json:"scheduled_time"`
			Status        string  `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
		}
		post = models.Post{
			Title:       body.Title,
			Content:     body.Content,
			PlatformIDs: body.PlatformIDs,
			Status:      body.Status,
		}
		if body.ScheduledTime != "" {
			t, err := time.Parse(time.RFC3339, body.ScheduledTime)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid scheduled time format"})
			}
			post.ScheduledTime = &t
		}
	}

	if post.Title == "" || post.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and content are required"})
	}
	if post.Status == "" {
		post.Status = models.PostStatusDraft
		if post.ScheduledTime != nil {
			post.Status = models.PostStatusScheduled
		}
	}

	created := s.store.CreatePost(userID, post)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) parseMultipartPost(c *fiber.Ctx) (*models.Post, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("unable to parse form")
	}

	post := models.Post{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Status:  c.FormValue("status"),
	}

	if v := c.FormValue("scheduled_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled time format")
		}
		post.ScheduledTime = &t
	}

	for _, raw := range form.Value["platform_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid platform id: %s", raw)
		}
		post.PlatformIDs = append(post.PlatformIDs, id)
	}

	files := form.File["image"]
	if len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, fmt.Errorf("unable to read image")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read image")
		}
		if !filetype.IsImage(data) {
			return nil, fmt.Errorf("uploaded file is not an image")
		}

		name, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		mediaName := name + mediaExt(data)
		s.store.SaveMedia(mediaName, data)
		post.ImageURL = "/media/" + mediaName
	}

	return &post, nil
}

func mediaExt(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind.Extension == "" {
		return ".bin"
	}
	return "." + kind.Extension
}

func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	var patch transfer.PostPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}

	post, ok := s.store.UpdatePost(getUserID(c), postID, func(p *models.Post) {
		if patch.Title != "" {
			p.Title = patch.Title
		}
		if patch.Content != "" {
			p.Content = patch.Content
		}
		if patch.Status != "" {
			p.Status = patch.Status
		}
		if patch.ScheduledTime != nil {
			p.ScheduledTime = patch.ScheduledTime
		}
	})
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	if !s.store.DeletePost(getUserID(c), postID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateImage renders a deterministic placeholder PNG for the prompt. The
// real backend calls out to an image model; the stub keeps the contract (a
// base64 PNG) without the external dependency.
func (s *Server) GenerateImage(c *fiber.Ctx) error {
	var req transfer.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prompt is required"})
	}

	data, err := renderPromptImage(req.Prompt)
	if err != nil {
		return err
	}

	name, err := gonanoid.New()
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(transfer.GenerateImageResponse{
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		Filename:    "generated_" + name + ".png",
	})
}

func renderPromptImage(prompt string) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	sum := h.Sum32()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) PublishPost(c *fiber.Ctx) error {
	userID := getUserID(c)
	postID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	post, ok := s.store.PostByID(userID, postID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}

	platformsRaw := c.FormValue("platforms")
	credentialsRaw := c.FormValue("credentials")

	var platformIDs []int64
	if platformsRaw != "" {
		if err := json.Unmarshal([]byte(platformsRaw), &platformIDs); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid platforms format"})
		}
	}
	if len(platformIDs) == 0 {
		platformIDs = post.PlatformIDs
	}
	if len(platformIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No platforms selected"})
	}

	creds := transfer.PlatformCredentials{}
	if credentialsRaw != "" {
		if err := json.Unmarshal([]byte(credentialsRaw), &creds); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid credentials format"})
		}
	}

	results := make([]models.PublishResult, 0, len(platformIDs))
	accounts := make([]*Account, 0, len(platformIDs))
	for _, id := range platformIDs {
		acc, ok := s.store.AccountByID(userID, id)
		if !ok {
			results = append(results, models.PublishResult{
				Platform: fmt.Sprintf("account %d", id),
				Success:  false,
				Message:  "Unknown social account",
			})
			continue
		}
		accounts = append(accounts, acc)
	}

	results = append(results, s.publisher.Publish(post, accounts, creds)...)
	s.store.AppendResults(postID, results)
	status, postedAt := resolveStatus(results)
	s.store.SetPostStatus(postID, status, postedAt)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"results": results})
}

// resolveStatus settles a post after a publish attempt: posted only when
// every platform succeeded, failed otherwise.
func resolveStatus(results []models.PublishResult) (string, *time.Time) {
	if len(results) == 0 {
		return models.PostStatusFailed, nil
	}
	for _, r := range results {
		if !r.Success {
			return models.PostStatusFailed, nil
		}
	}
	now := time.Now()
	return models.PostStatusPosted, &now
}

func (s *Server) PostResults(c *fiber.Ctx) error {
	postID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	results, ok := s.store.Results(getUserID(c), postID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}

	out := make([]models.PublishResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.PublishResult)
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) ServeMedia(c *fiber.Ctx) error {
	data, ok := s.store.Media(c.Params("name"))
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	kind, err := filetype.Match(data)
	if err == nil && kind.MIME.Value != "" {
		c.Set("Content-Type", kind.MIME.Value)
	}
	return c.Send(data)
}

func pathID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
