package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ============================================================================
// Birthday Window Tests
// ============================================================================

func TestHasBirthdayWithin_TodayIncluded(t *testing.T) {
	today := dateUTC(2025, time.June, 10)
	c := Contact{Birthday: dateUTC(1990, time.June, 10)}
	assert.True(t, c.HasBirthdayWithin(today, 7))
}

func TestHasBirthdayWithin_UpperBoundIncluded(t *testing.T) {
	today := dateUTC(2025, time.June, 10)
	c := Contact{Birthday: dateUTC(1990, time.June, 17)}
	assert.True(t, c.HasBirthdayWithin(today, 7))
}

func TestHasBirthdayWithin_DayAfterWindowExcluded(t *testing.T) {
	today := dateUTC(2025, time.June, 10)
	c := Contact{Birthday: dateUTC(1990, time.June, 18)}
	assert.False(t, c.HasBirthdayWithin(today, 7))
}

func TestHasBirthdayWithin_YesterdayExcluded(t *testing.T) {
	today := dateUTC(2025, time.June, 10)
	c := Contact{Birthday: dateUTC(1990, time.June, 9)}
	assert.False(t, c.HasBirthdayWithin(today, 7))
}

func TestHasBirthdayWithin_YearWrapDecemberToJanuary(t *testing.T) {
	today := dateUTC(2025, time.December, 29)
	c := Contact{Birthday: dateUTC(1985, time.January, 2)}
	assert.True(t, c.HasBirthdayWithin(today, 7), "early January birthday should match a late December window")
}

func TestHasBirthdayWithin_YearWrapOutsideWindow(t *testing.T) {
	today := dateUTC(2025, time.December, 29)
	c := Contact{Birthday: dateUTC(1985, time.January, 6)}
	assert.False(t, c.HasBirthdayWithin(today, 7), "January 6 is day 8 of a December 29 window")
}

func TestHasBirthdayWithin_BirthYearIrrelevant(t *testing.T) {
	today := dateUTC(2025, time.June, 10)
	for _, year := range []int{1950, 1990, 2020} {
		c := Contact{Birthday: dateUTC(year, time.June, 12)}
		assert.True(t, c.HasBirthdayWithin(today, 7), "birth year %d", year)
	}
}

func TestHasBirthdayWithin_TimeOfDayIgnored(t *testing.T) {
	today := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.UTC)
	c := Contact{Birthday: time.Date(1990, time.June, 17, 1, 0, 0, 0, time.UTC)}
	assert.True(t, c.HasBirthdayWithin(today, 7))
}

// ============================================================================
// Serialization Tests
// ============================================================================

func TestContact_OwnerExcludedFromJSON(t *testing.T) {
	c := Contact{ID: "ct-1", UserID: "usr-1", FirstName: "Alice"}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "usr-1")
	assert.Contains(t, string(data), "Alice")
}

func TestUser_SecretsExcludedFromJSON(t *testing.T) {
	u := User{
		ID:               "usr-1",
		Username:         "alice",
		Email:            "alice@example.com",
		PasswordHash:     "bcrypt-secret",
		RefreshTokenHash: "sha-secret",
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "bcrypt-secret")
	assert.NotContains(t, string(data), "sha-secret")
	assert.Contains(t, string(data), "alice@example.com")
}

func TestTokenPair_JSONShape(t *testing.T) {
	tp := TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}
	data, err := json.Marshal(tp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r","token_type":"bearer"}`, string(data))
}
