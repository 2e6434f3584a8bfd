package domain

import "time"

// CanonicalAccount is the normalized form of one account record.
type CanonicalAccount struct {
	AccountID string
	UserID    string
	Type      AccountType
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// AccountColumns is the canonical export column order for accounts.
func AccountColumns() []string {
	return []string{
		"account_id",
		"user_id",
		"account_type",
		"created_at",
		"updated_at",
	}
}

// Values returns the account's cells aligned to AccountColumns.
func (a *CanonicalAccount) Values() []any {
	return []any{
		a.AccountID,
		a.UserID,
		string(a.Type),
		a.CreatedAt,
		a.UpdatedAt,
	}
}
