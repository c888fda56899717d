package rest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

// EvaluateRequest is the wire form of one transaction to score.
type EvaluateRequest struct {
	TransactionID       string    `json:"transaction_id" validate:"required,uuid"`
	UserID              string    `json:"user_id" validate:"required,uuid"`
	Amount              string    `json:"amount" validate:"required,max=32"`
	Currency            string    `json:"currency" validate:"required,alpha,len=3"`
	Timestamp           time.Time `json:"timestamp" validate:"omitempty"`
	IPAddress           string    `json:"ip_address" validate:"required,ip"`
	UserAgent           string    `json:"user_agent" validate:"omitempty,max=512"`
	MerchantCategory    string    `json:"merchant_category" validate:"omitempty,max=100"`
	PaymentMethod       string    `json:"payment_method" validate:"required,oneof=credit_card debit_card bank_transfer wallet prepaid_card gift_card cryptocurrency"`
	BillingLocation     string    `json:"billing_location" validate:"omitempty,max=100"`
	DeviceFingerprintID string    `json:"device_fingerprint_id" validate:"omitempty,max=64"`
	IsInternational     bool      `json:"is_international"`
	IsFirstTimeVendor   bool      `json:"is_first_time_vendor"`
	IsKnownDevice       bool      `json:"is_known_device"`
}

// ToContext converts a validated request into the engine's input. A zero
// timestamp means the request carries no client clock and the server's is
// used instead.
func (r *EvaluateRequest) ToContext() (fraud.TransactionContext, error) {
	txnID, err := uuid.Parse(r.TransactionID)
	if err != nil {
		return fraud.TransactionContext{}, fmt.Errorf("parse transaction_id: %w", err)
	}
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return fraud.TransactionContext{}, fmt.Errorf("parse user_id: %w", err)
	}
	amount, err := values.NewMoneyFromString(r.Amount, r.Currency)
	if err != nil {
		return fraud.TransactionContext{}, fmt.Errorf("parse amount: %w", err)
	}
	if amount.IsNegative() {
		return fraud.TransactionContext{}, fmt.Errorf("amount must not be negative, got %s", amount)
	}

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return fraud.TransactionContext{
		ID:                  txnID,
		UserID:              userID,
		Amount:              amount,
		Timestamp:           ts,
		IPAddress:           r.IPAddress,
		UserAgent:           r.UserAgent,
		MerchantCategory:    r.MerchantCategory,
		PaymentMethod:       fraud.PaymentMethod(r.PaymentMethod),
		BillingLocation:     r.BillingLocation,
		DeviceFingerprintID: r.DeviceFingerprintID,
		IsInternational:     r.IsInternational,
		IsFirstTimeVendor:   r.IsFirstTimeVendor,
		IsKnownDevice:       r.IsKnownDevice,
	}, nil
}

// FeedbackRequest reports confirmed ground truth for a past evaluation.
type FeedbackRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	IsFraud       bool   `json:"is_fraud"`
}
