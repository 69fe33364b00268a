package domain

import (
	"time"
)

// Contact represents a single entry in a user's personal address book.
// Every contact belongs to exactly one owner; all queries are scoped by
// UserID so contacts of other users are indistinguishable from missing ones.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBirthdayWithin reports whether the contact's birthday, projected onto
// the current or the following year, falls inside [today, today+days]. Both
// boundaries are inclusive and dates are compared at day granularity, so a
// late-December window correctly picks up early-January birthdays.
func (c *Contact) HasBirthdayWithin(today time.Time, days int) bool {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)

	for _, year := range []int{start.Year(), start.Year() + 1} {
		next := time.Date(year, c.Birthday.Month(), c.Birthday.Day(), 0, 0, 0, 0, time.UTC)
		if !next.Before(start) && !next.After(end) {
			return true
		}
	}
	return false
}
