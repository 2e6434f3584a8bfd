package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalTransaction is the normalized form of one transaction-side
// record, safe for cross-dataset comparison. It is produced by a single
// canonicalization pass and never mutated afterwards. Amounts are exact
// decimals (never floats) so that discrepancy checks stay well-defined;
// a parse failure leaves Amount invalid rather than dropping the row.
type CanonicalTransaction struct {
	RecordID  string // source-assigned unique identifier
	LinkID    string // join identifier; equals RecordID on the source side
	AccountID string

	OccurredAt *time.Time // nil when missing or unparseable
	CreatedAt  *time.Time
	UpdatedAt  *time.Time

	Type          TransactionType
	Amount        decimal.NullDecimal
	Currency      string
	Status        Status
	PaymentMethod string
	PartnerName   string
}

// JoinKey associates a source record with its counterpart record.
// Uniqueness is not guaranteed on either side.
type JoinKey struct {
	LinkID    string
	AccountID string
}

// JoinKey returns the transaction's composite join key.
func (t *CanonicalTransaction) JoinKey() JoinKey {
	return JoinKey{LinkID: t.LinkID, AccountID: t.AccountID}
}

// Joinable reports whether the key can participate in a join. A key with
// an empty component never matches anything, mirroring relational NULL
// join semantics; such rows land in their side's *_only partition.
func (k JoinKey) Joinable() bool {
	return k.LinkID != "" && k.AccountID != ""
}

// TransactionColumns is the canonical export column order for one
// transaction side. Matched rows carry both sides' columns with
// source_/counterpart_ prefixes in this same order.
func TransactionColumns() []string {
	return []string{
		"record_id",
		"link_id",
		"account_id",
		"occurred_at",
		"created_at",
		"updated_at",
		"transaction_type",
		"amount",
		"currency_code",
		"status",
		"payment_method",
		"partner_name",
	}
}

// Values returns the transaction's cells aligned to TransactionColumns.
func (t *CanonicalTransaction) Values() []any {
	return []any{
		t.RecordID,
		t.LinkID,
		t.AccountID,
		t.OccurredAt,
		t.CreatedAt,
		t.UpdatedAt,
		string(t.Type),
		t.Amount,
		t.Currency,
		string(t.Status),
		t.PaymentMethod,
		t.PartnerName,
	}
}
