// Package pipeline canonicalizes raw feeds and runs the period stages:
// generate, cleanse, reconcile. Canonicalization is total: every input
// row yields exactly one canonical row, with unusable cells demoted to
// null or empty rather than dropped, so row counts are preserved end to
// end.
package pipeline

import (
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/normalize"
)

// TransactionsFromRaw canonicalizes one raw transaction feed in row
// order. It panics if entity is not a transaction feed; the caller
// selects the entity from a fixed set.
func TransactionsFromRaw(entity domain.EntityKind, records []domain.RawRecord) []domain.CanonicalTransaction {
	var sch transactionSchema
	switch entity {
	case domain.EntitySourceTransactions:
		sch = sourceTransactionSchema
	case domain.EntityCounterpartTransactions:
		sch = counterpartTransactionSchema
	default:
		panic(fmt.Sprintf("pipeline: no transaction schema for entity %q", entity))
	}
	return canonicalizeTransactions(sch, records)
}

// TransactionsFromCleaned re-types rows loaded from a cleaned table.
// Cleaned cells are already canonical, so this is idempotent; it exists
// because storage backends may hand values back as plain text.
func TransactionsFromCleaned(records []domain.RawRecord) []domain.CanonicalTransaction {
	return canonicalizeTransactions(cleanedTransactionSchema, records)
}

// AccountsFromRaw canonicalizes the raw account feed in row order.
func AccountsFromRaw(records []domain.RawRecord) []domain.CanonicalAccount {
	accounts := make([]domain.CanonicalAccount, len(records))
	for i, rec := range records {
		accounts[i] = canonicalizeAccount(rawAccountSchema, rec)
	}
	return accounts
}

func canonicalizeTransactions(sch transactionSchema, records []domain.RawRecord) []domain.CanonicalTransaction {
	txs := make([]domain.CanonicalTransaction, len(records))
	for i, rec := range records {
		txs[i] = canonicalizeTransaction(sch, rec)
	}
	return txs
}

func canonicalizeTransaction(sch transactionSchema, rec domain.RawRecord) domain.CanonicalTransaction {
	recordID := normalize.Identifier(rec[sch.recordID])
	linkID := recordID
	if sch.linkID != "" {
		linkID = normalize.Identifier(rec[sch.linkID])
	}
	return domain.CanonicalTransaction{
		RecordID:      recordID,
		LinkID:        linkID,
		AccountID:     normalize.Identifier(rec[sch.accountID]),
		OccurredAt:    normalize.Timestamp(rec[sch.occurredAt]),
		CreatedAt:     normalize.Timestamp(rec[sch.createdAt]),
		UpdatedAt:     normalize.Timestamp(rec[sch.updatedAt]),
		Type:          domain.TransactionType(normalize.Text(rec[sch.transactionType])),
		Amount:        normalize.Amount(rec[sch.amount]),
		Currency:      normalize.Code(rec[sch.currency]),
		Status:        domain.Status(normalize.Text(rec[sch.status])),
		PaymentMethod: normalize.Text(rec[sch.paymentMethod]),
		PartnerName:   normalize.Name(rec[sch.partnerName]),
	}
}

func canonicalizeAccount(sch accountSchema, rec domain.RawRecord) domain.CanonicalAccount {
	return domain.CanonicalAccount{
		AccountID: normalize.Identifier(rec[sch.accountID]),
		UserID:    normalize.Identifier(rec[sch.userID]),
		Type:      domain.AccountType(normalize.Text(rec[sch.accountType])),
		CreatedAt: normalize.Timestamp(rec[sch.createdAt]),
		UpdatedAt: normalize.Timestamp(rec[sch.updatedAt]),
	}
}

// TransactionTable assembles canonical transactions into the cleaned
// transaction table, preserving input order.
func TransactionTable(txs []domain.CanonicalTransaction) *dataset.Table {
	tab := dataset.New(domain.TransactionColumns()...)
	for i := range txs {
		tab.Append(txs[i].Values()...)
	}
	return tab
}

// AccountTable assembles canonical accounts into the cleaned account
// table, preserving input order.
func AccountTable(accounts []domain.CanonicalAccount) *dataset.Table {
	tab := dataset.New(domain.AccountColumns()...)
	for i := range accounts {
		tab.Append(accounts[i].Values()...)
	}
	return tab
}

// rawRecords adapts a loaded table into the record view the
// canonicalizers consume.
func rawRecords(tab *dataset.Table) []domain.RawRecord {
	rows := tab.Records()
	records := make([]domain.RawRecord, len(rows))
	for i, r := range rows {
		records[i] = domain.RawRecord(r)
	}
	return records
}
