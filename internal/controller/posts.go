package controller

import (
	"context"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// PostsController manages the post history screen.
type PostsController struct {
	*ListController[models.Post]
	client *apiclient.PostsClient
}

func NewPostsController(client *apiclient.PostsClient) *PostsController {
	return &PostsController{
		ListController: NewListController(client.List),
		client:         client,
	}
}

func (c *PostsController) Update(ctx context.Context, id int64, patch transfer.PostPatch) (*models.Post, error) {
	post, err := c.client.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return post, err
	}
	return post, nil
}

func (c *PostsController) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.Delete(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

func (c *PostsController) Results(ctx context.Context, id int64) ([]models.PublishResult, error) {
	return c.client.GetResults(ctx, id)
}
