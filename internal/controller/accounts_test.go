package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/session"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountsController(t *testing.T) (*AccountsController, *int) {
	t.Helper()

	accounts := []models.SocialAccount{}
	var listCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listCalls++
			json.NewEncoder(w).Encode(accounts)
		case http.MethodPost:
			var ac transfer.AccountCreation
			require.NoError(t, json.NewDecoder(r.Body).Decode(&ac))
			account := models.SocialAccount{ID: int64(len(accounts) + 1), Platform: ac.Platform, Username: ac.Username, IsActive: true}
			accounts = append(accounts, account)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(account)
		}
	})
	mux.HandleFunc("/accounts/1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			accounts = accounts[:0]
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))
	client := apiclient.New(srv.URL, store)
	return NewAccountsController(apiclient.NewAccountsClient(client)), &listCalls
}

func TestAccountsCreateRefetchesList(t *testing.T) {
	ctl, listCalls := newAccountsController(t)

	account, err := ctl.Create(context.Background(), transfer.AccountCreation{
		Platform: models.PlatformTelegram,
		Username: "mychannel",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTelegram, account.Platform)

	// Mutations refetch instead of merging locally.
	assert.Equal(t, 1, *listCalls)
	require.Len(t, ctl.Items(), 1)
	assert.Equal(t, StateLoaded, ctl.State())
}

func TestAccountsDeleteRequiresConfirmation(t *testing.T) {
	ctl, listCalls := newAccountsController(t)

	_, err := ctl.Create(context.Background(), transfer.AccountCreation{
		Platform: models.PlatformTelegram,
		Username: "mychannel",
	})
	require.NoError(t, err)

	err = ctl.Delete(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	require.Len(t, ctl.Items(), 1)

	require.NoError(t, ctl.Delete(context.Background(), 1, true))
	assert.Empty(t, ctl.Items())
	assert.Equal(t, 2, *listCalls)
}

func TestAccountsCreateRejectsUnknownPlatform(t *testing.T) {
	ctl, listCalls := newAccountsController(t)

	_, err := ctl.Create(context.Background(), transfer.AccountCreation{Platform: "myspace"})
	var valErr *apiclient.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, *listCalls)
}
