package model

import (
	"regexp"
	"strings"
	"time"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const (
	SlugMinLen = 3
	SlugMaxLen = 64
)

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupInput is the admin payload for creating or replacing a group.
type GroupInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (in *GroupInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
}

func (in GroupInput) Validate() error {
	v := &ValidationError{}
	if in.Name == "" {
		v.Add("name", "is required")
	}
	if err := ValidateSlug(in.Slug); err != "" {
		v.Add("slug", err)
	}
	return v.OrNil()
}

// Active reports the requested active flag, defaulting to true.
func (in GroupInput) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}

// ValidateSlug returns an empty string for a usable slug, otherwise the reason.
func ValidateSlug(slug string) string {
	switch {
	case slug == "":
		return "is required"
	case len(slug) < SlugMinLen || len(slug) > SlugMaxLen:
		return "must be between 3 and 64 characters"
	case !slugPattern.MatchString(slug):
		return "may only contain lowercase letters, digits and single hyphens"
	}
	return ""
}
