package models

// UploadResponse is returned by POST /api/upload on success
type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// GenerateRequest is the JSON body of POST /api/generate
type GenerateRequest struct {
	PhotoURL string `json:"photoUrl"`
	Style    string `json:"style"`
}

// GenerateResponse is returned by POST /api/generate on success.
// Description may be empty when the vision step produced no text.
type GenerateResponse struct {
	Success     bool   `json:"success"`
	AvatarURL   string `json:"avatarUrl"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

// StylesResponse lists the predefined style menu
type StylesResponse struct {
	Styles []Style `json:"styles"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	Time     string                 `json:"time"`
	Storage  string                 `json:"storage"`
	Pipeline map[string]interface{} `json:"pipeline,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
