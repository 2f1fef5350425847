package model

import (
	"time"

	"github.com/google/uuid"
)

type DeviceType string

const (
	Mobile  DeviceType = "mobile"
	Desktop DeviceType = "desktop"
	Tablet  DeviceType = "tablet"
)

type Click struct {
	ID         string     `json:"id"`
	GroupID    string     `json:"group_id"`
	NumberID   *string    `json:"number_id,omitempty"`
	Phone      string     `json:"phone"`
	CreatedAt  time.Time  `json:"created_at"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	DeviceType DeviceType `json:"device_type"`
	Referrer   string     `json:"referrer"`
}

// ClickEvent is what the redirect path hands to the click recorder. NumberPhone is
// passed exactly as the selector returned it, not the country-code normalised form.
type ClickEvent struct {
	GroupSlug   string
	NumberPhone string
	IPAddress   string
	UserAgent   string
	DeviceType  DeviceType
	Referrer    string
}

// ClickRow is a click joined with its group, as listed for export.
type ClickRow struct {
	Click
	GroupName string
	GroupSlug string
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func NewID() string {
	return uuid.NewString()
}
