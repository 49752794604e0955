// Package ui renders the terminal screens: candidate cards, list rows,
// and the loading and empty states.
package ui

import (
	"fmt"
	"strings"

	"devmatch/internal/models"
)

// DefaultAboutLength bounds the about blurb on a card.
const DefaultAboutLength = 120

// maxCardSkills caps the skill badges shown on a compact card row.
const maxCardSkills = 5

// Truncate shortens text to max runes, appending an ellipsis when it cut
// anything. Rune-safe for non-ASCII profiles.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// ProfileCompletion scores a profile from 0 to 100 across its eight
// display fields. Skills count as one field, filled when non-empty.
func ProfileCompletion(u *models.User) int {
	if u == nil {
		return 0
	}
	checks := []bool{
		strings.TrimSpace(u.FirstName) != "",
		strings.TrimSpace(u.LastName) != "",
		strings.TrimSpace(u.EmailID) != "",
		u.Age > 0,
		strings.TrimSpace(string(u.Gender)) != "",
		strings.TrimSpace(u.PhotoURL) != "",
		strings.TrimSpace(u.About) != "",
		len(u.Skills) > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

// UserCard renders a candidate profile for the feed screen.
func UserCard(u models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", u.FullName())
	if u.Age > 0 {
		fmt.Fprintf(&b, ", %d", u.Age)
	}
	if u.Gender != "" {
		fmt.Fprintf(&b, " (%s)", u.Gender)
	}
	b.WriteString("\n")
	if u.About != "" {
		fmt.Fprintf(&b, "  %s\n", Truncate(u.About, DefaultAboutLength))
	}
	if len(u.Skills) > 0 {
		shown := u.Skills
		extra := 0
		if len(shown) > maxCardSkills {
			extra = len(shown) - maxCardSkills
			shown = shown[:maxCardSkills]
		}
		fmt.Fprintf(&b, "  skills: %s", strings.Join(shown, ", "))
		if extra > 0 {
			fmt.Fprintf(&b, " (+%d more)", extra)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RequestCard renders a pending connection request.
func RequestCard(r models.ConnectionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants to connect\n", r.FromUser.FullName())
	if r.FromUser.About != "" {
		fmt.Fprintf(&b, "  %s\n", Truncate(r.FromUser.About, DefaultAboutLength))
	}
	b.WriteString("  [a]ccept  [r]eject\n")
	return b.String()
}

// ConnectionRow renders one accepted connection as a single list line.
func ConnectionRow(u models.User) string {
	line := u.FullName()
	if len(u.Skills) > 0 {
		line += " - " + strings.Join(u.Skills, ", ")
	}
	return line
}

// LoadingState is shown while a fetch is in flight.
func LoadingState() string {
	return "Loading...\n"
}

// EmptyState renders the zero-entry message for a screen.
func EmptyState(what string) string {
	return fmt.Sprintf("No %s found. Check back later!\n", what)
}
