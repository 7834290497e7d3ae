package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/session"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostsClient(t *testing.T, handler http.Handler) (*apiclient.PostsClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))
	return apiclient.NewPostsClient(apiclient.New(srv.URL, store)), srv
}

func publishHandler(t *testing.T, results []models.PublishResult) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/posts/" {
			json.NewEncoder(w).Encode(models.Post{ID: 1, Title: "t", Status: models.PostStatusDraft})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	return mux
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func filledComposer(posts *apiclient.PostsClient) *ComposerController {
	c := NewComposerController(posts)
	c.SetTitle("launch day")
	c.SetContent("we are live")
	c.TogglePlatform(1)
	return c
}

func TestComposerCanSubmitGates(t *testing.T) {
	c := NewComposerController(nil)
	assert.False(t, c.CanSubmit(), "empty form must not be submittable")

	c.SetTitle("launch day")
	assert.False(t, c.CanSubmit(), "content still missing")

	c.SetContent("we are live")
	assert.False(t, c.CanSubmit(), "no platform selected")

	c.TogglePlatform(1)
	assert.True(t, c.CanSubmit())

	c.TogglePlatform(1)
	assert.False(t, c.CanSubmit(), "toggling a selected platform deselects it")
}

func TestComposerScheduleRejectsPastTime(t *testing.T) {
	c := NewComposerController(nil)

	var valErr *apiclient.ValidationError
	err := c.Schedule(time.Now().Add(-time.Minute))
	require.ErrorAs(t, err, &valErr)
	assert.Nil(t, c.Form().ScheduledTime)

	future := time.Now().Add(time.Hour)
	require.NoError(t, c.Schedule(future))
	require.NotNil(t, c.Form().ScheduledTime)
	assert.True(t, c.Form().ScheduledTime.Equal(future))
}

func TestComposerSchedulePostRequiresTime(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, nil))
	c := filledComposer(posts)

	var valErr *apiclient.ValidationError
	_, err := c.SchedulePost(context.Background())
	require.ErrorAs(t, err, &valErr)
}

func TestComposerSchedulePostResetsForm(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, nil))
	c := filledComposer(posts)
	require.NoError(t, c.Schedule(time.Now().Add(time.Hour)))

	var mutations int
	c.OnMutation(func() { mutations++ })

	_, err := c.SchedulePost(context.Background())
	require.NoError(t, err)

	form := c.Form()
	assert.Empty(t, form.Title)
	assert.Empty(t, form.PlatformIDs)
	assert.Nil(t, form.ScheduledTime)
	assert.Equal(t, 1, mutations)
}

func TestComposerSaveDraftKeepsForm(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, nil))
	c := filledComposer(posts)

	post, err := c.SaveDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "launch day", c.Form().Title)
}

func TestComposerPublishAllSucceededResetsForm(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, []models.PublishResult{
		{Platform: models.PlatformTelegram, Success: true, Message: "Posted to Telegram successfully"},
	}))
	c := filledComposer(posts)
	c.AttachImage("photo.png", tinyPNG(t))

	summary, err := c.PublishNow(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, summary.AllSucceeded())
	assert.Contains(t, summary.Message(), "telegram")

	form := c.Form()
	assert.Empty(t, form.Title)
	assert.Empty(t, form.ImageData)
}

func TestComposerPublishPartialFailureKeepsForm(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, []models.PublishResult{
		{Platform: models.PlatformTelegram, Success: true, Message: "Posted to Telegram successfully"},
		{Platform: models.PlatformFacebook, Success: false, Message: "Posting to Facebook is not implemented yet"},
	}))
	c := filledComposer(posts)
	c.TogglePlatform(2)
	c.AttachImage("photo.png", tinyPNG(t))

	var mutations int
	c.OnMutation(func() { mutations++ })

	summary, err := c.PublishNow(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, summary.AllSucceeded())
	assert.False(t, summary.AllFailed())
	assert.Equal(t, []string{models.PlatformTelegram}, summary.Succeeded)
	require.Len(t, summary.Failed, 1)

	// The user retries from the same content after a partial failure.
	form := c.Form()
	assert.Equal(t, "launch day", form.Title)
	assert.Equal(t, "photo.png", form.ImageName)
	assert.Equal(t, []int64{1, 2}, form.PlatformIDs)
	assert.Equal(t, 1, mutations)
}

func TestComposerPublishRequiresInstagramCredentials(t *testing.T) {
	posts, _ := newPostsClient(t, publishHandler(t, nil))
	c := filledComposer(posts)
	c.SetAccounts([]models.SocialAccount{
		{ID: 1, Platform: models.PlatformInstagram, IsActive: true},
	})

	require.True(t, c.RequiresInstagramCredentials())

	var valErr *apiclient.ValidationError
	_, err := c.PublishNow(context.Background(), nil)
	require.ErrorAs(t, err, &valErr)

	_, err = c.PublishNow(context.Background(), transfer.PlatformCredentials{
		models.PlatformInstagram: {"username": "u", "password": "p"},
	})
	require.NoError(t, err)
}

func TestComposerUseGeneratedImage(t *testing.T) {
	c := NewComposerController(nil)

	err := c.UseGeneratedImage(models.GeneratedImage{Base64: "not base64!!"})
	var valErr *apiclient.ValidationError
	require.ErrorAs(t, err, &valErr)

	require.NoError(t, c.UseGeneratedImage(models.GeneratedImage{Base64: "aGVsbG8="}))
	form := c.Form()
	assert.Equal(t, "generated-image.png", form.ImageName)
	assert.Equal(t, []byte("hello"), form.ImageData)
}

func TestPartitionResults(t *testing.T) {
	summary := partitionResults([]models.PublishResult{
		{Platform: "telegram", Success: true},
		{Platform: "facebook", Success: true},
		{Platform: "instagram", Success: false, Message: "Instagram credentials required"},
	})
	assert.Equal(t, []string{"telegram", "facebook"}, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "instagram", summary.Failed[0].Platform)
	assert.False(t, summary.AllSucceeded())
	assert.Contains(t, summary.Message(), "Instagram credentials required")
}
