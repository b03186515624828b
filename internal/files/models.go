package files

import "time"

// UploadResponse is returned after a successful photo upload
type UploadResponse struct {
	Success bool   `json:"success"`
	FileKey string `json:"file_key"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Size    int    `json:"size"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"download_url"`
	ExpiresAt   int64  `json:"expires_at"` // Unix timestamp
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	// DownloadTTL bounds how long a presigned download link stays valid
	DownloadTTL = 1 * time.Hour
)
