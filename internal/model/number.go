package model

import (
	"strings"
	"time"
)

const (
	PhoneMinDigits = 10
	PhoneMaxDigits = 15
)

type WhatsAppNumber struct {
	ID            string    `json:"id"`
	Phone         string    `json:"phone"`
	GroupID       string    `json:"group_id"`
	IsActive      bool      `json:"is_active"`
	CustomMessage *string   `json:"custom_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type NumberInput struct {
	Phone         string  `json:"phone"`
	GroupID       string  `json:"group_id"`
	IsActive      *bool   `json:"is_active"`
	CustomMessage *string `json:"custom_message"`
}

func (in *NumberInput) Normalize() {
	in.Phone = Digits(in.Phone)
	in.GroupID = strings.TrimSpace(in.GroupID)
	if in.CustomMessage != nil {
		m := strings.TrimSpace(*in.CustomMessage)
		if m == "" {
			in.CustomMessage = nil
		} else {
			in.CustomMessage = &m
		}
	}
}

func (in NumberInput) Validate() error {
	v := &ValidationError{}
	if n := len(in.Phone); n < PhoneMinDigits || n > PhoneMaxDigits {
		v.Add("phone", "must contain between 10 and 15 digits")
	}
	if in.GroupID == "" {
		v.Add("group_id", "is required")
	} else if !IsUUID(in.GroupID) {
		v.Add("group_id", "must be a UUID")
	}
	return v.OrNil()
}

func (in NumberInput) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}

// NumberSelection is what the number selector hands back for one visit.
// It is a point-in-time snapshot and is never persisted.
type NumberSelection struct {
	NumberID     string `json:"number_id"`
	Phone        string `json:"phone"`
	FinalMessage string `json:"final_message"`
}

// Digits strips everything that is not an ASCII digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
