package fraud

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testUserID = uuid.MustParse("7f8b1c22-4f1e-4f7a-9a3e-1d2c3b4a5f60")
	testTxID   = uuid.MustParse("0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9")
)

// testTransaction is a baseline transaction that triggers no rules: a
// non-round, low-value card payment at a typical hour from a known device.
func testTransaction() fraud.TransactionContext {
	return fraud.TransactionContext{
		ID:                  testTxID,
		UserID:              testUserID,
		Amount:              values.MustNewMoneyFromFloat(49.75, values.USD),
		Timestamp:           time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		IPAddress:           "203.0.113.10",
		UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		MerchantCategory:    "groceries",
		PaymentMethod:       fraud.PaymentCreditCard,
		BillingLocation:     "US",
		DeviceFingerprintID: "fp-known",
		IsKnownDevice:       true,
	}
}

func usHome() fraud.GeoLocation {
	return fraud.GeoLocation{
		Country:   "US",
		Region:    "NY",
		City:      "New York",
		Latitude:  40.7128,
		Longitude: -74.0060,
		Timezone:  "America/New_York",
	}
}

func usHistory(txnTime time.Time) []fraud.LocationRecord {
	home := usHome()
	return []fraud.LocationRecord{
		{Location: home, Timestamp: txnTime.Add(-2 * time.Hour)},
		{Location: home, Timestamp: txnTime.Add(-26 * time.Hour)},
		{Location: home, Timestamp: txnTime.Add(-50 * time.Hour)},
	}
}

func knownDevice() fraud.DeviceFingerprint {
	return fraud.DeviceFingerprint{
		ID:              "fp-known",
		TrustScore:      80,
		AssociatedUsers: []uuid.UUID{testUserID},
		FirstSeen:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		LastSeen:        time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
	}
}

func quietVelocity() (*fraud.VelocityData, *fraud.VelocityLimits) {
	data := &fraud.VelocityData{
		TransactionsLastHour:     1,
		TransactionsLastDay:      5,
		AmountLastHour:           values.MustNewMoneyFromFloat(100, values.USD),
		AvgHourlyAmountLast7Days: values.MustNewMoneyFromFloat(500, values.USD),
	}
	limits := &fraud.VelocityLimits{
		TransactionsPerHour: 10,
		TransactionsPerDay:  50,
		AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
	}
	return data, limits
}

func typicalProfile() *fraud.UserBehaviorProfile {
	return &fraud.UserBehaviorProfile{
		TypicalTransactionHours:    []int{12, 13, 14, 15},
		AverageTransactionAmount:   decimal.NewFromFloat(50),
		TransactionAmountStdDev:    decimal.NewFromFloat(10),
		FrequentMerchantCategories: []string{"groceries", "restaurants"},
	}
}

// cleanCollaborators wires every mock so that all five analyzers score zero
// for testTransaction.
func cleanCollaborators(txn fraud.TransactionContext) (*mockVelocityStore, *mockLocationService, *mockDeviceService, *mockBehaviorStore) {
	velocity := new(mockVelocityStore)
	data, limits := quietVelocity()
	velocity.On("GetVelocityData", mock.Anything, txn.UserID).Return(data, nil)
	velocity.On("GetVelocityLimits", mock.Anything).Return(limits, nil)

	location := new(mockLocationService)
	home := usHome()
	location.On("ResolveLocation", mock.Anything, txn.IPAddress).Return(&home, nil)
	location.On("GetLocationHistory", mock.Anything, txn.UserID).Return(usHistory(txn.Timestamp), nil)
	location.On("IsHighRiskCountry", mock.Anything, "US").Return(false, nil)

	device := new(mockDeviceService)
	current := knownDevice()
	device.On("GenerateFingerprint", mock.Anything, mock.Anything).Return(&current, nil)
	device.On("GetDeviceHistory", mock.Anything, txn.UserID).Return([]fraud.DeviceFingerprint{knownDevice()}, nil)

	behavior := new(mockBehaviorStore)
	behavior.On("GetBehaviorProfile", mock.Anything, txn.UserID).Return(typicalProfile(), nil)

	return velocity, location, device, behavior
}
