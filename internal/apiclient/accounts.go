package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// AccountsClient maps the /accounts resource family.
type AccountsClient struct {
	c *Client
}

func NewAccountsClient(c *Client) *AccountsClient {
	return &AccountsClient{c: c}
}

func (a *AccountsClient) List(ctx context.Context) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	if err := a.c.doJSON(ctx, http.MethodGet, "/accounts/", nil, false, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *AccountsClient) Create(ctx context.Context, ac transfer.AccountCreation) (*models.SocialAccount, error) {
	if !models.ValidPlatform(ac.Platform) {
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported platform: %s", ac.Platform)}
	}

	var account models.SocialAccount
	if err := a.c.doJSON(ctx, http.MethodPost, "/accounts/", ac, false, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *AccountsClient) Update(ctx context.Context, id int64, ac transfer.AccountCreation) (*models.SocialAccount, error) {
	var account models.SocialAccount
	endpoint := fmt.Sprintf("/accounts/%d/", id)
	if err := a.c.doJSON(ctx, http.MethodPut, endpoint, ac, false, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *AccountsClient) Delete(ctx context.Context, id int64) error {
	return a.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d/", id), nil, false, nil)
}
