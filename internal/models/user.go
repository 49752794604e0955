// Package models defines the wire-level data model shared by the client
// adapter and the screen controllers.
package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Gender is the server's closed gender enumeration.
type Gender string

// Gender values accepted by the API.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Age bounds enforced at signup and profile edit.
const (
	MinAge = 18
	MaxAge = 100
)

// User is a member profile as the API serializes it. IDs are opaque
// strings; profiles are created at signup, mutated via profile edit, and
// never deleted client-side.
type User struct {
	ID        string   `json:"_id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	EmailID   string   `json:"emailId,omitempty"`
	Age       int      `json:"age"`
	Gender    Gender   `json:"gender"`
	PhotoURL  string   `json:"photoUrl"`
	About     string   `json:"about"`
	Skills    []string `json:"skills"`
}

// Validate checks the field constraints the server enforces so forms can
// reject bad input before a round trip.
func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return fmt.Errorf("firstName is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return fmt.Errorf("lastName is required")
	}
	if u.Age < MinAge || u.Age > MaxAge {
		return fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	if !u.Gender.Valid() {
		return fmt.Errorf("gender must be one of male, female, other")
	}
	if u.PhotoURL != "" {
		if parsed, err := url.Parse(u.PhotoURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("photoUrl %q is not an absolute URL", u.PhotoURL)
		}
	}
	return nil
}

// AddSkill appends a skill preserving insertion order. Skills form an
// ordered set: inserting an already-present skill is a no-op.
func (u *User) AddSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return false
	}
	for _, s := range u.Skills {
		if strings.EqualFold(s, skill) {
			return false
		}
	}
	u.Skills = append(u.Skills, skill)
	return true
}

// FullName returns the display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
