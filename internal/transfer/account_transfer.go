package transfer

type AccountCreation struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
	ChatID   string `json:"chat_id,omitempty"`
	IsActive bool   `json:"is_active"`
}
