package models

import "time"

type SocialAccount struct {
	ID        int64     `json:"id"`
	Platform  string    `json:"platform"`
	Username  string    `json:"username"`
	Token     string    `json:"token,omitempty"`
	ChatID    string    `json:"chat_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	PlatformTelegram  = "telegram"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformWhatsapp  = "whatsapp"
)

func ValidPlatform(platform string) bool {
	switch platform {
	case PlatformTelegram, PlatformInstagram, PlatformFacebook, PlatformWhatsapp:
		return true
	}
	return false
}
