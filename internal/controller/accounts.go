package controller

import (
	"context"
	"errors"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// ErrConfirmationRequired gates destructive actions; the view must ask the
// user before retrying with confirmed=true.
var ErrConfirmationRequired = errors.New("confirmation required")

// AccountsController manages the social-account screen: the list plus
// create/update/delete, each followed by a refetch.
type AccountsController struct {
	*ListController[models.SocialAccount]
	client *apiclient.AccountsClient
}

func NewAccountsController(client *apiclient.AccountsClient) *AccountsController {
	return &AccountsController{
		ListController: NewListController(client.List),
		client:         client,
	}
}

func (c *AccountsController) Create(ctx context.Context, ac transfer.AccountCreation) (*models.SocialAccount, error) {
	account, err := c.client.Create(ctx, ac)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return account, err
	}
	return account, nil
}

func (c *AccountsController) Update(ctx context.Context, id int64, ac transfer.AccountCreation) (*models.SocialAccount, error) {
	account, err := c.client.Update(ctx, id, ac)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return account, err
	}
	return account, nil
}

func (c *AccountsController) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.Delete(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
