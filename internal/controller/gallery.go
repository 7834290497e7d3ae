package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/localstore"
	"github.com/maheshrc27/postflow-cli/internal/models"
)

// GalleryController drives the AI image panel. Generation is a single
// blocking request with no progress channel, so the controller only exposes
// an in-progress flag for the duration. Generated images are view state plus
// an optional locally persisted gallery; the server does not track them.
type GalleryController struct {
	mu         sync.Mutex
	posts      *apiclient.PostsClient
	store      *localstore.Store
	gallery    []models.GeneratedImage
	generating bool
}

func NewGalleryController(posts *apiclient.PostsClient, store *localstore.Store) *GalleryController {
	g := &GalleryController{posts: posts, store: store}
	if store != nil {
		gallery, err := store.LoadGallery()
		if err != nil {
			slog.Error("could not load local gallery", "error", err)
		}
		g.gallery = gallery
	}
	return g
}

func (g *GalleryController) Generating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generating
}

func (g *GalleryController) Gallery() []models.GeneratedImage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.GeneratedImage{}, g.gallery...)
}

func (g *GalleryController) Generate(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	g.mu.Lock()
	if g.generating {
		g.mu.Unlock()
		return nil, &apiclient.ValidationError{Message: "a generation is already in progress"}
	}
	g.generating = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.generating = false
		g.mu.Unlock()
	}()

	resp, err := g.posts.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	img := models.GeneratedImage{
		Base64:      resp.ImageBase64,
		Prompt:      prompt,
		GeneratedAt: time.Now(),
	}

	g.mu.Lock()
	g.gallery = append(g.gallery, img)
	gallery := append([]models.GeneratedImage{}, g.gallery...)
	g.mu.Unlock()

	if g.store != nil {
		if err := g.store.SaveGallery(gallery); err != nil {
			slog.Error("could not persist gallery", "error", err)
		}
	}
	return &img, nil
}
