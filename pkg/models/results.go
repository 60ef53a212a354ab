package models

import "time"

// UploadResult is the outcome of storing a photo
type UploadResult struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// AvatarResult is the outcome of a completed generation pipeline
type AvatarResult struct {
	AvatarURL   string
	Key         string
	Style       string
	Description string
	Elapsed     time.Duration
}
