package domain

// RawRecord is one unnormalized feed row: column name to raw cell value.
// Depending on the loader, cells may be strings, numbers, timestamps or
// nil; the canonicalization pipeline owns all type coercion, so a
// RawRecord is consumed exactly once and never compared directly.
type RawRecord map[string]any

// EntityKind names one of the three feed shapes a period carries.
type EntityKind string

const (
	EntityAccounts                EntityKind = "accounts"
	EntitySourceTransactions      EntityKind = "source_transactions"
	EntityCounterpartTransactions EntityKind = "counterpart_transactions"
)

// Entities lists all entity kinds in processing order.
func Entities() []EntityKind {
	return []EntityKind{
		EntityAccounts,
		EntitySourceTransactions,
		EntityCounterpartTransactions,
	}
}

// Valid reports whether e is one of the declared entity kinds.
func (e EntityKind) Valid() bool {
	switch e {
	case EntityAccounts, EntitySourceTransactions, EntityCounterpartTransactions:
		return true
	}
	return false
}

// Raw returns the logical name of the entity's raw dataset.
func (e EntityKind) Raw() string {
	return string(e)
}

// Cleaned returns the logical name of the entity's cleaned dataset.
func (e EntityKind) Cleaned() string {
	return "cleaned_" + string(e)
}

// RawColumns returns the column layout of the entity's raw feed, in
// feed order. Loaders and generators agree on this layout; the
// canonicalization pipeline maps it onto the canonical shape.
func (e EntityKind) RawColumns() []string {
	switch e {
	case EntityAccounts:
		return []string{"account_id", "user_id", "account_type", "created_at", "updated_at"}
	case EntitySourceTransactions:
		return []string{
			"transaction_id", "account_id", "transaction_datetime", "transaction_type",
			"amount", "currency_code", "status", "partner_name", "payment_method",
			"created_at", "updated_at",
		}
	case EntityCounterpartTransactions:
		return []string{
			"partner_transaction_id", "source_transaction_id", "account_id",
			"transaction_datetime", "transaction_type", "amount", "currency_code",
			"status", "payment_method", "created_at", "updated_at", "partner_name",
		}
	}
	return nil
}

// Partition names one of the four reconciliation outcome partitions.
type Partition string

const (
	PartitionMatched         Partition = "matched"
	PartitionDiscrepant      Partition = "discrepant"
	PartitionSourceOnly      Partition = "source_only"
	PartitionCounterpartOnly Partition = "counterpart_only"
)

// Partitions lists the four outcome partitions in export order.
func Partitions() []Partition {
	return []Partition{
		PartitionMatched,
		PartitionDiscrepant,
		PartitionSourceOnly,
		PartitionCounterpartOnly,
	}
}

// Reconciled returns the logical name of the partition's exported dataset.
func (p Partition) Reconciled() string {
	return "reconciled_" + string(p)
}
