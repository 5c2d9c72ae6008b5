package model

import "time"

// Role values stored in users.role and carried in the JWT "role" claim.
const (
	RoleMentor = "MENTOR"
	RoleMentee = "MENTEE"
)

// Account represents a row in the `users` table.  Mentors and mentees
// share one table; role-specific attributes (hourly rate) are simply
// unused for mentees.
//
// Fields:
//  ID              – primary key identifier.
//  Email           – unique, lower-cased email address.
//  PasswordHash    – bcrypt hash; never serialized.
//  Role            – MENTOR or MENTEE.
//  Name            – display name shown to counterparts.
//  Bio             – free text profile description.
//  Skills          – list of skill tags (stored as a JSON array).
//  HourlyRateCents – mentor rate in cents, zero for mentees.
//  ProfileComplete – set once the role's required profile fields exist.
//  IsActive        – inactive accounts cannot sign in.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Account struct {
	ID              uint64    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	Skills          []string  `json:"skills"`
	HourlyRateCents uint32    `json:"hourlyRateCents"`
	ProfileComplete bool      `json:"profileComplete"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ValidRole reports whether r is one of the two account roles.
func ValidRole(r string) bool { return r == RoleMentor || r == RoleMentee }

// IsProfileComplete reports whether the account carries every field its
// role requires: a name for everyone, plus a rate and at least one skill
// for mentors.
func (a Account) IsProfileComplete() bool {
	if a.Name == "" {
		return false
	}
	if a.Role == RoleMentor {
		return a.HourlyRateCents > 0 && len(a.Skills) > 0
	}
	return true
}

// Party is the public projection of an account used when one side of a
// booking or slot needs to show who the other side is.
type Party struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
