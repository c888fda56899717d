package collaborator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

func chromeAttrs() fraud.DeviceAttributes {
	return fraud.DeviceAttributes{
		UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		AcceptLanguage:   "en-US",
		Timezone:         "America/New_York",
		ScreenResolution: "2560x1440",
		Platform:         "MacIntel",
	}
}

func TestDeviceRegistry_FingerprintIsDeterministic(t *testing.T) {
	registry := NewDeviceRegistry()
	ctx := context.Background()

	first, err := registry.GenerateFingerprint(ctx, chromeAttrs())
	require.NoError(t, err)
	second, err := registry.GenerateFingerprint(ctx, chromeAttrs())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, first.ID, 32)

	other := chromeAttrs()
	other.Timezone = "Europe/Berlin"
	third, err := registry.GenerateFingerprint(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestDeviceRegistry_ObserveBuildsHistory(t *testing.T) {
	registry := NewDeviceRegistry()
	ctx := context.Background()
	userID := uuid.New()

	history, err := registry.GetDeviceHistory(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, history)

	registry.Observe(userID, chromeAttrs())

	history, err = registry.GetDeviceHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, []uuid.UUID{userID}, history[0].AssociatedUsers)

	// Observing the same device again does not duplicate it.
	registry.Observe(userID, chromeAttrs())
	history, err = registry.GetDeviceHistory(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDeviceRegistry_SharedDeviceAccumulatesUsers(t *testing.T) {
	registry := NewDeviceRegistry()
	ctx := context.Background()

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, user := range users {
		registry.Observe(user, chromeAttrs())
	}

	fp, err := registry.GenerateFingerprint(ctx, chromeAttrs())
	require.NoError(t, err)
	assert.Len(t, fp.AssociatedUsers, 3)
}

func TestBehaviorProfileStore_EmptyProfileForNewUser(t *testing.T) {
	store := NewBehaviorProfileStore()

	profile, err := store.GetBehaviorProfile(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, profile.TypicalTransactionHours)
	assert.Empty(t, profile.FrequentMerchantCategories)
	assert.True(t, profile.AverageTransactionAmount.IsZero())
}

func TestBehaviorProfileStore_ProfileConverges(t *testing.T) {
	store := NewBehaviorProfileStore()
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		store.ObserveTransaction(userID, fraud.TransactionContext{
			UserID:           userID,
			Amount:           values.MustNewMoneyFromFloat(50, values.USD),
			Timestamp:        time.Date(2025, 3, 1+i, 14, 0, 0, 0, time.UTC),
			MerchantCategory: "groceries",
		})
	}

	profile, err := store.GetBehaviorProfile(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, profile.HasTypicalHour(14))
	assert.True(t, profile.HasFrequentCategory("groceries"))
	assert.Equal(t, "50", profile.AverageTransactionAmount.String())
	assert.True(t, profile.TransactionAmountStdDev.IsZero())
}
