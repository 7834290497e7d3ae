package apiclient

import (
	"context"
	"net/http"

	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// AuthClient maps the /auth resource family. Login and Register are the only
// anonymous calls in the API.
type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

func (a *AuthClient) Register(ctx context.Context, reg transfer.Registration) error {
	if reg.Username == "" || reg.Password == "" {
		return &ValidationError{Message: "username and password are required"}
	}
	return a.c.doJSON(ctx, http.MethodPost, "/auth/register/", reg, true, nil)
}

// Login exchanges credentials for a bearer token and stores it. A 2xx
// response without a token is treated as a malformed response, not a login.
func (a *AuthClient) Login(ctx context.Context, creds transfer.Credentials) (*transfer.LoginResponse, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, &ValidationError{Message: "username and password are required"}
	}

	var resp transfer.LoginResponse
	if err := a.c.doJSON(ctx, http.MethodPost, "/auth/login/", creds, true, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &ValidationError{Message: "no token received from server"}
	}

	if err := a.c.session.SetToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the server session and clears the local token.
func (a *AuthClient) Logout(ctx context.Context) error {
	if err := a.c.doJSON(ctx, http.MethodPost, "/auth/logout/", nil, false, nil); err != nil {
		return err
	}
	return a.c.session.ClearToken()
}

func (a *AuthClient) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.c.doJSON(ctx, http.MethodGet, "/auth/profile/", nil, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthClient) UpdateProfile(ctx context.Context, update transfer.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := a.c.doJSON(ctx, http.MethodPut, "/auth/profile/", update, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthClient) ChangePassword(ctx context.Context, change transfer.PasswordChange) error {
	if change.NewPassword == "" {
		return &ValidationError{Message: "new password is required"}
	}
	return a.c.doJSON(ctx, http.MethodPost, "/auth/change-password/", change, false, nil)
}
