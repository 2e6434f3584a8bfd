package domain

// Status is a transaction lifecycle status. The known values below cover
// what both ledgers normally emit, but neither feed enforces a closed
// set: any other cleaned string passes through and Known reports false.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusPending  Status = "pending"
	StatusRefunded Status = "refunded"
)

// Known reports whether s is one of the declared statuses.
func (s Status) Known() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusPending, StatusRefunded:
		return true
	}
	return false
}

// Statuses lists the known statuses.
func Statuses() []Status {
	return []Status{StatusSuccess, StatusFailed, StatusPending, StatusRefunded}
}

// TransactionType is the direction of a transaction. Unknown values pass
// through unchanged.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// Known reports whether t is one of the declared transaction types.
func (t TransactionType) Known() bool {
	return t == TypeCredit || t == TypeDebit
}

// TransactionTypes lists the known transaction types.
func TransactionTypes() []TransactionType {
	return []TransactionType{TypeCredit, TypeDebit}
}

// AccountType is the tier of an account. Unknown values pass through
// unchanged.
type AccountType string

const (
	AccountRegular  AccountType = "regular"
	AccountPremium  AccountType = "premium"
	AccountBusiness AccountType = "business"
)

// Known reports whether a is one of the declared account types.
func (a AccountType) Known() bool {
	return a == AccountRegular || a == AccountPremium || a == AccountBusiness
}

// AccountTypes lists the known account types.
func AccountTypes() []AccountType {
	return []AccountType{AccountRegular, AccountPremium, AccountBusiness}
}
