package domain

import "time"

// UserSettings are the summary lengths a user picked in the bot.
type UserSettings struct {
	UserID           int64
	ExtractiveLines  int
	AbstractiveLines int
	UpdatedAt        time.Time
}

// SummaryDefaults are used for users without stored settings.
type SummaryDefaults struct {
	ExtractiveLines  int
	AbstractiveLines int
}
