// Package reconcile classifies two canonical transaction datasets into
// the four reconciliation partitions. The engine is a pure function of
// its inputs: no I/O, no shared state, so independent periods can run
// concurrently without coordination.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// Outcome holds the four partitions of one reconciliation run.
//
// Matched carries one row per joined (source, counterpart) pair with
// both sides' full field sets under source_/counterpart_ prefixes.
// Discrepant is the subset of Matched whose amount, status or currency
// differ. SourceOnly and CounterpartOnly carry the rows that found no
// partner. Matched/SourceOnly/CounterpartOnly are mutually exclusive
// and exhaustive over the union of both inputs; every Discrepant row
// also appears in Matched.
type Outcome struct {
	Matched         *dataset.Table
	Discrepant      *dataset.Table
	SourceOnly      *dataset.Table
	CounterpartOnly *dataset.Table
}

// Partitions returns the outcome tables keyed by partition name, in
// export order.
func (o *Outcome) Partitions() []PartitionTable {
	return []PartitionTable{
		{Name: domain.PartitionMatched, Table: o.Matched},
		{Name: domain.PartitionDiscrepant, Table: o.Discrepant},
		{Name: domain.PartitionSourceOnly, Table: o.SourceOnly},
		{Name: domain.PartitionCounterpartOnly, Table: o.CounterpartOnly},
	}
}

// PartitionTable pairs one partition's name with its rows.
type PartitionTable struct {
	Name  domain.Partition
	Table *dataset.Table
}

// Reconcile joins source against counterpart on (link_id, account_id)
// and computes the four-way partition. Both inputs may be empty; the
// partitions then degrade to empty or entirely-unmatched tables, which
// is a normal result and not an error.
//
// The join is an explicit hash join over lists per key, so duplicate
// keys on either side fan out to their full cartesian product instead
// of collapsing. Rows whose key has an empty component never match.
// Row order follows the inputs: matched rows in source order (then
// counterpart order within a key), *_only rows in their input order.
func Reconcile(source, counterpart []domain.CanonicalTransaction) *Outcome {
	out := &Outcome{
		Matched:         dataset.New(MatchedColumns()...),
		Discrepant:      dataset.New(MatchedColumns()...),
		SourceOnly:      dataset.New(domain.TransactionColumns()...),
		CounterpartOnly: dataset.New(domain.TransactionColumns()...),
	}

	sourceIndex := buildIndex(source)
	counterpartIndex := buildIndex(counterpart)

	for i := range source {
		s := &source[i]
		key := s.JoinKey()
		if !key.Joinable() {
			out.SourceOnly.Append(s.Values()...)
			continue
		}
		partners, ok := counterpartIndex[key]
		if !ok {
			out.SourceOnly.Append(s.Values()...)
			continue
		}
		for _, j := range partners {
			c := &counterpart[j]
			row := mergedValues(s, c)
			out.Matched.Append(row...)
			if differs(s, c) {
				out.Discrepant.Append(row...)
			}
		}
	}

	for j := range counterpart {
		c := &counterpart[j]
		key := c.JoinKey()
		if !key.Joinable() {
			out.CounterpartOnly.Append(c.Values()...)
			continue
		}
		if _, ok := sourceIndex[key]; !ok {
			out.CounterpartOnly.Append(c.Values()...)
		}
	}

	return out
}

// MatchedColumns is the column order of the matched and discrepant
// partitions: the source side's canonical columns followed by the
// counterpart side's, each with its origin prefix.
func MatchedColumns() []string {
	base := domain.TransactionColumns()
	columns := make([]string, 0, 2*len(base))
	for _, c := range base {
		columns = append(columns, "source_"+c)
	}
	for _, c := range base {
		columns = append(columns, "counterpart_"+c)
	}
	return columns
}

// buildIndex maps each joinable key to the positions of its rows, in
// input order. Unjoinable keys are excluded so empty components cannot
// match each other.
func buildIndex(rows []domain.CanonicalTransaction) map[domain.JoinKey][]int {
	index := make(map[domain.JoinKey][]int, len(rows))
	for i := range rows {
		key := rows[i].JoinKey()
		if !key.Joinable() {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}

func mergedValues(s, c *domain.CanonicalTransaction) []any {
	return append(s.Values(), c.Values()...)
}

// differs applies the discrepancy predicate to one matched pair:
// strict inequality on amount, status or currency.
func differs(s, c *domain.CanonicalTransaction) bool {
	return amountsDiffer(s.Amount, c.Amount) ||
		s.Status != c.Status ||
		s.Currency != c.Currency
}

// amountsDiffer compares amounts exactly on their canonical decimal
// representation, with no epsilon tolerance. A comparison involving a
// null amount is never a discrepancy; null amounts are audited
// downstream rather than flagged here.
func amountsDiffer(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return false
	}
	return !a.Decimal.Equal(b.Decimal)
}
