package collaborator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

const newDeviceTrustScore = 60

// DeviceRegistry derives deterministic fingerprints from device attributes
// and tracks which users each device has been seen with. All state is in
// memory; the registry survives for the process lifetime.
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]*fraud.DeviceFingerprint
	byUser  map[uuid.UUID][]string
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*fraud.DeviceFingerprint),
		byUser:  make(map[uuid.UUID][]string),
	}
}

// GenerateFingerprint hashes the attribute set. The same attributes always
// produce the same fingerprint ID, so a returning device is recognized
// without client-side state.
func (r *DeviceRegistry) GenerateFingerprint(_ context.Context, attrs fraud.DeviceAttributes) (*fraud.DeviceFingerprint, error) {
	id := fingerprintID(attrs)

	r.mu.RLock()
	known, ok := r.devices[id]
	r.mu.RUnlock()

	if ok {
		fp := *known
		fp.AssociatedUsers = append([]uuid.UUID(nil), known.AssociatedUsers...)
		return &fp, nil
	}

	now := time.Now().UTC()
	return &fraud.DeviceFingerprint{
		ID:         id,
		TrustScore: newDeviceTrustScore,
		FirstSeen:  now,
		LastSeen:   now,
	}, nil
}

func (r *DeviceRegistry) GetDeviceHistory(_ context.Context, userID uuid.UUID) ([]fraud.DeviceFingerprint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	history := make([]fraud.DeviceFingerprint, 0, len(ids))
	for _, id := range ids {
		if fp, ok := r.devices[id]; ok {
			copied := *fp
			copied.AssociatedUsers = append([]uuid.UUID(nil), fp.AssociatedUsers...)
			history = append(history, copied)
		}
	}
	return history, nil
}

// Observe marks a device as seen for a user, creating or updating the
// registry entry. Called by the API layer after each evaluation.
func (r *DeviceRegistry) Observe(userID uuid.UUID, attrs fraud.DeviceAttributes) {
	id := fingerprintID(attrs)
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	fp, ok := r.devices[id]
	if !ok {
		fp = &fraud.DeviceFingerprint{
			ID:         id,
			TrustScore: newDeviceTrustScore,
			FirstSeen:  now,
		}
		r.devices[id] = fp
	}
	fp.LastSeen = now

	if !containsUUID(fp.AssociatedUsers, userID) {
		fp.AssociatedUsers = append(fp.AssociatedUsers, userID)
	}
	if !containsString(r.byUser[userID], id) {
		r.byUser[userID] = append(r.byUser[userID], id)
	}
}

func fingerprintID(attrs fraud.DeviceAttributes) string {
	h := sha256.New()
	for _, part := range []string{
		attrs.UserAgent,
		attrs.AcceptLanguage,
		attrs.Timezone,
		attrs.ScreenResolution,
		attrs.Platform,
	} {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func containsUUID(list []uuid.UUID, id uuid.UUID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
