package fraud

import (
	"time"

	"github.com/google/uuid"
)

// DeviceAttributes are the stable client attributes a fingerprint is
// derived from. Identical attributes always produce the identical
// fingerprint ID.
type DeviceAttributes struct {
	UserAgent        string `json:"user_agent"`
	AcceptLanguage   string `json:"accept_language"`
	Timezone         string `json:"timezone"`
	ScreenResolution string `json:"screen_resolution"`
	Platform         string `json:"platform"`
}

// DeviceFingerprint summarizes a recognized device. It is owned by the
// device-history collaborator; the engine only reads it.
type DeviceFingerprint struct {
	ID              string      `json:"id"`
	TrustScore      int         `json:"trust_score"` // 0-100
	AssociatedUsers []uuid.UUID `json:"associated_users"`
	FirstSeen       time.Time   `json:"first_seen"`
	LastSeen        time.Time   `json:"last_seen"`
}
