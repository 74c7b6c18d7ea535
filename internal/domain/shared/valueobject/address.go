package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is a value object carried on orders and round-tripped
// through the payment provider's opaque metadata as JSON.
type ShippingAddress struct {
	Alias      string `json:"alias,omitempty"`
	Details    string `json:"details"`
	Phone      string `json:"phone,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// IsZero reports whether the address carries no information
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Normalize trims surrounding whitespace from all fields
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		Alias:      strings.TrimSpace(a.Alias),
		Details:    strings.TrimSpace(a.Details),
		Phone:      strings.TrimSpace(a.Phone),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
	}
}

// Value implements driver.Valuer so the address is stored as a JSON column
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}
}

// ParseShippingAddress decodes an address serialized into provider metadata.
// An empty payload yields a zero address rather than an error: a missing
// address must not abort order materialization.
func ParseShippingAddress(payload string) ShippingAddress {
	if payload == "" {
		return ShippingAddress{}
	}
	var addr ShippingAddress
	if err := json.Unmarshal([]byte(payload), &addr); err != nil {
		return ShippingAddress{}
	}
	return addr
}

// EncodeMetadata serializes the address for provider metadata
func (a ShippingAddress) EncodeMetadata() string {
	b, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(b)
}
