package pipeline

// transactionSchema binds the canonical transaction fields to the
// columns of one transaction feed. A feed whose rows link to themselves
// (the source side) leaves linkID empty.
type transactionSchema struct {
	recordID        string
	linkID          string
	accountID       string
	occurredAt      string
	createdAt       string
	updatedAt       string
	transactionType string
	amount          string
	currency        string
	status          string
	paymentMethod   string
	partnerName     string
}

// sourceTransactionSchema maps the source platform's raw feed. Its
// transaction_id doubles as the join anchor for the counterpart side.
var sourceTransactionSchema = transactionSchema{
	recordID:        "transaction_id",
	accountID:       "account_id",
	occurredAt:      "transaction_datetime",
	createdAt:       "created_at",
	updatedAt:       "updated_at",
	transactionType: "transaction_type",
	amount:          "amount",
	currency:        "currency_code",
	status:          "status",
	paymentMethod:   "payment_method",
	partnerName:     "partner_name",
}

// counterpartTransactionSchema maps the partner settlement feed, whose
// source_transaction_id column references the source feed's
// transaction_id.
var counterpartTransactionSchema = transactionSchema{
	recordID:        "partner_transaction_id",
	linkID:          "source_transaction_id",
	accountID:       "account_id",
	occurredAt:      "transaction_datetime",
	createdAt:       "created_at",
	updatedAt:       "updated_at",
	transactionType: "transaction_type",
	amount:          "amount",
	currency:        "currency_code",
	status:          "status",
	paymentMethod:   "payment_method",
	partnerName:     "partner_name",
}

// cleanedTransactionSchema maps a stored cleaned table back onto the
// canonical shape; its columns already carry the canonical names, so
// re-canonicalizing a cleaned table is a no-op on its values.
var cleanedTransactionSchema = transactionSchema{
	recordID:        "record_id",
	linkID:          "link_id",
	accountID:       "account_id",
	occurredAt:      "occurred_at",
	createdAt:       "created_at",
	updatedAt:       "updated_at",
	transactionType: "transaction_type",
	amount:          "amount",
	currency:        "currency_code",
	status:          "status",
	paymentMethod:   "payment_method",
	partnerName:     "partner_name",
}

// accountSchema binds the canonical account fields to the account feed.
type accountSchema struct {
	accountID   string
	userID      string
	accountType string
	createdAt   string
	updatedAt   string
}

var rawAccountSchema = accountSchema{
	accountID:   "account_id",
	userID:      "user_id",
	accountType: "account_type",
	createdAt:   "created_at",
	updatedAt:   "updated_at",
}
