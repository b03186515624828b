package email

import (
	"time"
)

// AlertMetadata is stored in Redis for deduplication of alert events
type AlertMetadata struct {
	SentAt     time.Time `json:"sent_at"`
	PostID     string    `json:"post_id"`
	Recipients int       `json:"recipients"`
}
