package models

// TrackingPreference controls whether reconciliation auto-applies for a
// person, asks the user first, or never applies.
type TrackingPreference string

const (
	// Track: every reconciliation touching this person applies automatically.
	Track TrackingPreference = "TRACK"

	// Ask: reconciliation defers until the user gives explicit consent for
	// the specific record. There is no timeout; the decision stays pending
	// until resolved.
	Ask TrackingPreference = "ASK"

	// NoTrack: reconciliation never auto-applies; the person and their
	// ledger entries are archived (kept in storage, excluded from balances).
	NoTrack TrackingPreference = "NO_TRACK"
)

// Valid reports whether p is one of the three known preferences.
func (p TrackingPreference) Valid() bool {
	switch p {
	case Track, Ask, NoTrack:
		return true
	}
	return false
}

// Person is a third party the user borrows from, lends to, or pays for.
// Identity is the (UserID, Name) pair with Name in normalized form; two
// different users can each have their own "Ravi".
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Name is the normalized display name (trimmed, single-spaced,
	// title-cased per word). See NormalizeName.
	Name string

	// TrackingPreference governs auto-apply behavior. New people default
	// to Ask.
	TrackingPreference TrackingPreference

	// Archived hides the person from the main People list. Set when the
	// preference moves to NoTrack, cleared on restore.
	Archived bool

	// CreatedAt is the Unix timestamp when the person was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
