package transfer

import "time"

// PostCreation carries the compose form. Image bytes travel as a multipart
// file part when present, the rest as form fields.
type PostCreation struct {
	Title         string
	Content       string
	ImageName     string
	ImageData     []byte
	PlatformIDs   []int64
	ScheduledTime *time.Time
	Status        string
}

type PostPatch struct {
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content,omitempty"`
	Status        string     `json:"status,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

// PlatformCredentials holds per-publish secrets keyed by platform name.
// Instagram credentials are collected per publish action and transmitted
// once, never written to durable storage.
type PlatformCredentials map[string]map[string]string

type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateImageResponse struct {
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
}
