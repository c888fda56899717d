package fraud

import (
	"time"

	"github.com/google/uuid"

	"github.com/payshield/risk-engine/internal/domain/values"
)

// PaymentMethod identifies how a transaction is funded.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentWallet         PaymentMethod = "wallet"
	PaymentPrepaidCard    PaymentMethod = "prepaid_card"
	PaymentGiftCard       PaymentMethod = "gift_card"
	PaymentCryptocurrency PaymentMethod = "cryptocurrency"
)

// TransactionContext is the immutable input to one evaluation. It is created
// once per request and never mutated by the engine.
type TransactionContext struct {
	ID                  uuid.UUID     `json:"id"`
	UserID              uuid.UUID     `json:"user_id"`
	Amount              values.Money  `json:"amount"`
	Timestamp           time.Time     `json:"timestamp"`
	IPAddress           string        `json:"ip_address"`
	UserAgent           string        `json:"user_agent"`
	MerchantCategory    string        `json:"merchant_category"`
	PaymentMethod       PaymentMethod `json:"payment_method"`
	BillingLocation     string        `json:"billing_location"`
	DeviceFingerprintID string        `json:"device_fingerprint_id"`

	// Booleans precomputed by collaborators.
	IsInternational   bool `json:"is_international"`
	IsFirstTimeVendor bool `json:"is_first_time_vendor"`
	IsKnownDevice     bool `json:"is_known_device"`
}
