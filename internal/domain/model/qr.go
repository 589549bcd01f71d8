package model

import (
	"encoding/json"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

type QRType string

const (
	QRTypeStatic  QRType = "static"
	QRTypeDynamic QRType = "dynamic"
)

// DynamicCodeTTL is the validity window of a minted dynamic code.
const DynamicCodeTTL = 5 * time.Minute

// QRPayload is the text content of a scannable code. Static codes carry only
// the business id; dynamic codes additionally carry a transaction id, an
// amount and an expiry.
type QRPayload struct {
	BusinessID    string            `json:"businessId"`
	Type          QRType            `json:"type,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	AmountCents   int64             `json:"amount,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Timestamp     time.Time         `json:"timestamp,omitempty"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
}

// DecodeQRPayload parses raw scanned text. Anything that is not JSON with a
// businessId field is a malformed code.
func DecodeQRPayload(raw string) (*QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, domain.ErrMalformedCode
	}
	if p.BusinessID == "" {
		return nil, domain.ErrMalformedCode
	}
	return &p, nil
}

// Encode renders the payload back to scannable text.
func (p *QRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsDynamic reports whether the payload references a minted single-use code.
func (p *QRPayload) IsDynamic() bool {
	return p.Type == QRTypeDynamic || p.TransactionID != ""
}

// DynamicCode is a stored single-use code minted through the business API.
type DynamicCode struct {
	BusinessID    string
	TransactionID string
	AmountCents   int64
	Metadata      map[string]string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Used          bool
}

// NewDynamicCode validates and constructs a dynamic code valid for
// DynamicCodeTTL from now.
func NewDynamicCode(businessID, transactionID string, amountCents int64, metadata map[string]string, now time.Time) (*DynamicCode, error) {
	if businessID == "" || transactionID == "" || amountCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &DynamicCode{
		BusinessID:    businessID,
		TransactionID: transactionID,
		AmountCents:   amountCents,
		Metadata:      metadata,
		CreatedAt:     now,
		ExpiresAt:     now.Add(DynamicCodeTTL),
	}, nil
}

// Payload returns the scannable representation of the code.
func (c *DynamicCode) Payload() *QRPayload {
	exp := c.ExpiresAt
	return &QRPayload{
		BusinessID:    c.BusinessID,
		Type:          QRTypeDynamic,
		TransactionID: c.TransactionID,
		AmountCents:   c.AmountCents,
		Metadata:      c.Metadata,
		Timestamp:     c.CreatedAt,
		ExpiresAt:     &exp,
	}
}

// Expired reports whether the code's validity window has passed.
func (c *DynamicCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
