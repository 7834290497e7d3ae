package stubserver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// Publisher fans a post out to the selected platform accounts and collects
// one result per account. Platform behavior mirrors the real backend:
// Telegram posts with the stored bot token and chat id, Instagram demands
// per-call credentials, Facebook and WhatsApp are not wired up.
type Publisher struct {
	store *Store
}

func NewPublisher(store *Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Publish(post *models.Post, accounts []*Account, creds transfer.PlatformCredentials) []models.PublishResult {
	results := make([]models.PublishResult, len(accounts))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 4)

	for i, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, acc *Account) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i] = p.publishOne(post, acc, creds)
		}(i, acc)
	}
	wg.Wait()

	return results
}

func (p *Publisher) publishOne(post *models.Post, acc *Account, creds transfer.PlatformCredentials) models.PublishResult {
	result := models.PublishResult{Platform: acc.Platform}

	switch acc.Platform {
	case models.PlatformTelegram:
		token, err := p.store.Token(acc)
		if err != nil {
			slog.Error(err.Error())
			result.Message = "Telegram credentials unreadable"
			return result
		}
		chatID, err := p.store.ChatID(acc)
		if err != nil {
			slog.Error(err.Error())
			result.Message = "Telegram credentials unreadable"
			return result
		}
		if token == "" || chatID == "" {
			result.Message = "Telegram credentials not configured"
			return result
		}
		result.Success = true
		result.Message = "Posted to Telegram successfully"

	case models.PlatformInstagram:
		ig := creds[models.PlatformInstagram]
		if ig["username"] == "" || ig["password"] == "" {
			result.Message = "Instagram credentials required"
			return result
		}
		if post.ImageURL == "" {
			result.Message = "Instagram requires an image"
			return result
		}
		result.Success = true
		result.Message = "Posted successfully"

	case models.PlatformFacebook:
		result.Message = "Facebook posting not implemented yet"

	case models.PlatformWhatsapp:
		result.Message = "WhatsApp posting not implemented yet"

	default:
		result.Message = fmt.Sprintf("Unsupported platform: %s", acc.Platform)
	}

	return result
}
