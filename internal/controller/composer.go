package controller

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// ComposerForm is the local state of the create/schedule/publish screen.
type ComposerForm struct {
	Title         string
	Content       string
	ImageName     string
	ImageData     []byte
	PlatformIDs   []int64
	ScheduledTime *time.Time
}

// PublishSummary partitions one publish call's per-platform outcomes.
type PublishSummary struct {
	Succeeded []string
	Failed    []models.PublishResult
}

func (s *PublishSummary) AllSucceeded() bool {
	return len(s.Failed) == 0 && len(s.Succeeded) > 0
}

func (s *PublishSummary) AllFailed() bool {
	return len(s.Succeeded) == 0 && len(s.Failed) > 0
}

// Message renders the combined outcome for the user. A mixed result reads
// differently from a total failure.
func (s *PublishSummary) Message() string {
	switch {
	case s.AllSucceeded():
		return fmt.Sprintf("published to %s", strings.Join(s.Succeeded, ", "))
	case s.AllFailed():
		return fmt.Sprintf("publishing failed on every platform: %s", s.failureLines())
	case len(s.Succeeded) == 0 && len(s.Failed) == 0:
		return "no platforms reported a result"
	default:
		return fmt.Sprintf("published to %s; failed: %s", strings.Join(s.Succeeded, ", "), s.failureLines())
	}
}

func (s *PublishSummary) failureLines() string {
	lines := make([]string, 0, len(s.Failed))
	for _, r := range s.Failed {
		lines = append(lines, fmt.Sprintf("%s (%s)", r.Platform, r.Message))
	}
	return strings.Join(lines, ", ")
}

// ComposerController drives the compose form: local edits, client-side
// validation before any network call, submission, and publish-result
// handling. Accounts are supplied by the accounts list so platform selection
// can be checked against what is actually connected.
type ComposerController struct {
	mu         sync.Mutex
	posts      *apiclient.PostsClient
	accounts   []models.SocialAccount
	form       ComposerForm
	submitting bool
	onMutation []func()
}

func NewComposerController(posts *apiclient.PostsClient) *ComposerController {
	return &ComposerController{posts: posts}
}

// OnMutation registers a refresh hook run after every successful mutating
// call (create, schedule, publish).
func (c *ComposerController) OnMutation(fn func()) {
	c.mu.Lock()
	c.onMutation = append(c.onMutation, fn)
	c.mu.Unlock()
}

// SetAccounts is wired to the accounts list controller's subscription.
func (c *ComposerController) SetAccounts(accounts []models.SocialAccount) {
	c.mu.Lock()
	c.accounts = accounts
	c.mu.Unlock()
}

func (c *ComposerController) SetTitle(title string) {
	c.mu.Lock()
	c.form.Title = title
	c.mu.Unlock()
}

func (c *ComposerController) SetContent(content string) {
	c.mu.Lock()
	c.form.Content = content
	c.mu.Unlock()
}

func (c *ComposerController) AttachImage(name string, data []byte) {
	c.mu.Lock()
	c.form.ImageName = name
	c.form.ImageData = data
	c.mu.Unlock()
}

func (c *ComposerController) RemoveImage() {
	c.mu.Lock()
	c.form.ImageName = ""
	c.form.ImageData = nil
	c.mu.Unlock()
}

// UseGeneratedImage moves an AI-generated image from the gallery into the
// compose form.
func (c *ComposerController) UseGeneratedImage(img models.GeneratedImage) error {
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return &apiclient.ValidationError{Message: "generated image payload is not valid base64"}
	}
	c.AttachImage("generated-image.png", data)
	return nil
}

func (c *ComposerController) TogglePlatform(accountID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, id := range c.form.PlatformIDs {
		if id == accountID {
			c.form.PlatformIDs = append(c.form.PlatformIDs[:i], c.form.PlatformIDs[i+1:]...)
			return
		}
	}
	c.form.PlatformIDs = append(c.form.PlatformIDs, accountID)
}

// Schedule sets the scheduled time. A time not strictly in the future is
// rejected here, before anything reaches the network.
func (c *ComposerController) Schedule(t time.Time) error {
	if !t.After(time.Now()) {
		return &apiclient.ValidationError{Message: "please select a future date and time"}
	}
	c.mu.Lock()
	c.form.ScheduledTime = &t
	c.mu.Unlock()
	return nil
}

func (c *ComposerController) ClearSchedule() {
	c.mu.Lock()
	c.form.ScheduledTime = nil
	c.mu.Unlock()
}

func (c *ComposerController) Form() ComposerForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := c.form
	form.PlatformIDs = append([]int64{}, c.form.PlatformIDs...)
	return form
}

// CanSubmit gates the submit action; publish must not be invocable with an
// incomplete form.
func (c *ComposerController) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked() == nil && !c.submitting
}

func (c *ComposerController) validateLocked() error {
	if c.form.Title == "" || c.form.Content == "" {
		return &apiclient.ValidationError{Message: "please fill in all required fields"}
	}
	if len(c.form.PlatformIDs) == 0 {
		return &apiclient.ValidationError{Message: "please select at least one platform"}
	}
	if c.form.ScheduledTime != nil && !c.form.ScheduledTime.After(time.Now()) {
		return &apiclient.ValidationError{Message: "please select a future date and time"}
	}
	return nil
}

// RequiresInstagramCredentials reports whether any selected account is an
// Instagram account. Those credentials are collected per publish action and
// never stored.
func (c *ComposerController) RequiresInstagramCredentials() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instagramSelectedLocked()
}

func (c *ComposerController) instagramSelectedLocked() bool {
	selected := make(map[int64]bool, len(c.form.PlatformIDs))
	for _, id := range c.form.PlatformIDs {
		selected[id] = true
	}
	for _, acc := range c.accounts {
		if selected[acc.ID] && acc.Platform == models.PlatformInstagram {
			return true
		}
	}
	return false
}

func (c *ComposerController) beginSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return &apiclient.ValidationError{Message: "a submission is already in progress"}
	}
	if err := c.validateLocked(); err != nil {
		return err
	}
	c.submitting = true
	return nil
}

func (c *ComposerController) endSubmit() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
}

func (c *ComposerController) notifyMutation() {
	c.mu.Lock()
	hooks := append([]func(){}, c.onMutation...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *ComposerController) creation(status string) *transfer.PostCreation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &transfer.PostCreation{
		Title:         c.form.Title,
		Content:       c.form.Content,
		ImageName:     c.form.ImageName,
		ImageData:     c.form.ImageData,
		PlatformIDs:   append([]int64{}, c.form.PlatformIDs...),
		ScheduledTime: c.form.ScheduledTime,
		Status:        status,
	}
}

// SaveDraft creates the post without publishing. The form is kept so the
// user can continue editing.
func (c *ComposerController) SaveDraft(ctx context.Context) (*models.Post, error) {
	if err := c.beginSubmit(); err != nil {
		return nil, err
	}
	defer c.endSubmit()

	post, err := c.posts.Create(ctx, c.creation(models.PostStatusDraft))
	if err != nil {
		return nil, err
	}
	c.notifyMutation()
	return post, nil
}

// SchedulePost creates the post with a scheduled status. The server resolves
// it to posted or failed when the time comes; the client only reflects that
// on refetch.
func (c *ComposerController) SchedulePost(ctx context.Context) (*models.Post, error) {
	c.mu.Lock()
	scheduled := c.form.ScheduledTime
	c.mu.Unlock()
	if scheduled == nil {
		return nil, &apiclient.ValidationError{Message: "please select a date and time"}
	}

	if err := c.beginSubmit(); err != nil {
		return nil, err
	}
	defer c.endSubmit()

	post, err := c.posts.Create(ctx, c.creation(models.PostStatusScheduled))
	if err != nil {
		return nil, err
	}
	c.resetAll()
	c.notifyMutation()
	return post, nil
}

// PublishNow creates the post and publishes it immediately to the selected
// platforms. The form fully resets only when every platform succeeded; on a
// partial failure the image and caption stay so the user can retry.
func (c *ComposerController) PublishNow(ctx context.Context, creds transfer.PlatformCredentials) (*PublishSummary, error) {
	if c.RequiresInstagramCredentials() {
		ig := creds[models.PlatformInstagram]
		if ig["username"] == "" || ig["password"] == "" {
			return nil, &apiclient.ValidationError{Message: "instagram credentials required"}
		}
	}

	if err := c.beginSubmit(); err != nil {
		return nil, err
	}
	defer c.endSubmit()

	post, err := c.posts.Create(ctx, c.creation(models.PostStatusDraft))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	platformIDs := append([]int64{}, c.form.PlatformIDs...)
	c.mu.Unlock()

	results, err := c.posts.Publish(ctx, post.ID, platformIDs, creds)
	if err != nil {
		c.notifyMutation()
		return nil, err
	}

	// The form keeps its image and caption unless every platform succeeded,
	// so a retry after partial failure starts from the same content.
	summary := partitionResults(results)
	if summary.AllSucceeded() {
		c.resetAll()
	}
	c.notifyMutation()
	return summary, nil
}

func partitionResults(results []models.PublishResult) *PublishSummary {
	summary := &PublishSummary{}
	for _, r := range results {
		if r.Success {
			summary.Succeeded = append(summary.Succeeded, r.Platform)
		} else {
			summary.Failed = append(summary.Failed, r)
		}
	}
	return summary
}

func (c *ComposerController) resetAll() {
	c.mu.Lock()
	c.form = ComposerForm{}
	c.mu.Unlock()
}
