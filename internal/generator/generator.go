// Package generator produces one period's worth of synthetic raw feeds:
// an account roster and two transaction ledgers that mostly agree but
// disagree at configurable rates, rendered with the formatting mess of
// a real upstream export. Output is deterministic for a given seed and
// call sequence.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/pipeline"
)

// Config controls the shape of one generated period.
type Config struct {
	Accounts           int    // accounts opened within the period
	HistoricalAccounts int    // older accounts mixed into the roster
	Transactions       int    // source-side transaction count
	Currency           string // clean currency code, e.g. "PHP"

	// Discrepancy rates, applied per source transaction.
	MissingRate        float64 // counterpart row absent entirely
	ExtraRate          float64 // surplus counterpart rows per source row
	AmountMismatchRate float64 // counterpart amount off by up to ±10%
	StatusMismatchRate float64 // counterpart status flipped

	// Raw-format variance.
	FormatNoiseRate float64 // cell rendered in an awkward but parseable spelling
	GarbageRate     float64 // cell rendered unparseable

	Seed     int64          // 0 seeds from the clock
	Location *time.Location // nil defaults to UTC+8
}

// DefaultConfig mirrors the production feed profile.
func DefaultConfig() Config {
	return Config{
		Accounts:           700,
		HistoricalAccounts: 300,
		Transactions:       100000,
		Currency:           "PHP",
		MissingRate:        0.05,
		ExtraRate:          0.01,
		AmountMismatchRate: 0.03,
		StatusMismatchRate: 0.02,
		FormatNoiseRate:    0.10,
		GarbageRate:        0.002,
	}
}

// Generator emits raw feeds for periods. Not safe for concurrent use;
// each backfill worker should own its own Generator.
type Generator struct {
	cfg   Config
	loc   *time.Location
	rng   *rand.Rand
	faker *gofakeit.Faker
}

var _ pipeline.FeedSource = (*Generator)(nil)

// New builds a Generator. A zero Seed is replaced with the clock so
// unseeded runs differ; pass an explicit seed for reproducible feeds.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.FixedZone("UTC+8", 8*60*60)
	}
	return &Generator{
		cfg:   cfg,
		loc:   loc,
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

type account struct {
	id        string
	userID    string
	kind      domain.AccountType
	createdAt time.Time
	updatedAt time.Time
}

type transaction struct {
	id         string
	linkID     string // empty on the source side
	accountID  string
	occurredAt time.Time
	kind       domain.TransactionType
	amount     decimal.Decimal
	currency   string
	status     domain.Status
	partner    string
	payment    string
	createdAt  time.Time
	updatedAt  time.Time
}

var (
	sourcePaymentMethods      = []string{"E-Wallet", "Credit Card", "Cash"}
	counterpartPaymentMethods = []string{"E-Wallet", "Credit Card", "Debit Card", "Cash"}
)

// Feeds implements pipeline.FeedSource.
func (g *Generator) Feeds(period domain.Period) (*pipeline.RawFeeds, error) {
	if g.cfg.Transactions > 0 && g.cfg.Accounts+g.cfg.HistoricalAccounts <= 0 {
		return nil, fmt.Errorf("Feeds: %d transactions need at least one account", g.cfg.Transactions)
	}

	accounts := g.accounts(period)
	source := g.sourceTransactions(period, accounts)
	counterpart := g.counterpartTransactions(period, source)

	return &pipeline.RawFeeds{
		Accounts:                g.accountTable(accounts),
		SourceTransactions:      g.transactionTable(domain.EntitySourceTransactions, source),
		CounterpartTransactions: g.transactionTable(domain.EntityCounterpartTransactions, counterpart),
	}, nil
}

func (g *Generator) accounts(period domain.Period) []account {
	accounts := make([]account, 0, g.cfg.Accounts+g.cfg.HistoricalAccounts)
	for i := 0; i < g.cfg.Accounts; i++ {
		createdAt := g.instantIn(period)
		accounts = append(accounts, account{
			id:        g.newID(),
			userID:    g.newID(),
			kind:      pick(g.rng, domain.AccountTypes()),
			createdAt: createdAt,
			updatedAt: createdAt.Add(g.minutes(1440)),
		})
	}
	for i := 0; i < g.cfg.HistoricalAccounts; i++ {
		createdAt := g.instantBefore(period)
		accounts = append(accounts, account{
			id:        g.newID(),
			userID:    g.newID(),
			kind:      pick(g.rng, domain.AccountTypes()),
			createdAt: createdAt,
			updatedAt: createdAt.AddDate(0, 0, 30+g.rng.Intn(336)),
		})
	}
	return accounts
}

func (g *Generator) sourceTransactions(period domain.Period, accounts []account) []transaction {
	txs := make([]transaction, 0, g.cfg.Transactions)
	for i := 0; i < g.cfg.Transactions; i++ {
		occurredAt := g.instantIn(period)
		txs = append(txs, transaction{
			id:         g.newID(),
			accountID:  accounts[g.rng.Intn(len(accounts))].id,
			occurredAt: occurredAt,
			kind:       pick(g.rng, domain.TransactionTypes()),
			amount:     g.amountBetween(5, 500),
			currency:   g.cfg.Currency,
			status:     pick(g.rng, domain.Statuses()),
			partner:    g.faker.Company(),
			payment:    pick(g.rng, sourcePaymentMethods),
			createdAt:  occurredAt.Add(-g.minutes(60)),
			updatedAt:  occurredAt.Add(g.minutes(60)),
		})
	}
	return txs
}

// counterpartTransactions mirrors the source ledger, then injects the
// configured disagreements: dropped rows, amount and status drift, and
// surplus rows that reuse an existing source link (duplicate join
// keys). The result is shuffled so row order carries no signal.
func (g *Generator) counterpartTransactions(period domain.Period, source []transaction) []transaction {
	txs := make([]transaction, 0, len(source))
	for i := range source {
		if g.chance(g.cfg.MissingRate) {
			continue
		}
		src := &source[i]
		occurredAt := g.instantIn(period)
		tx := transaction{
			id:         g.newID(),
			linkID:     src.id,
			accountID:  src.accountID,
			occurredAt: occurredAt,
			kind:       src.kind,
			amount:     src.amount,
			currency:   src.currency,
			status:     src.status,
			partner:    g.faker.Company(),
			payment:    src.payment,
			createdAt:  occurredAt.Add(-g.minutes(60)),
			updatedAt:  occurredAt.Add(g.minutes(60)),
		}
		if g.chance(g.cfg.AmountMismatchRate) {
			drift := decimal.NewFromFloat(0.9 + g.rng.Float64()*0.2)
			tx.amount = tx.amount.Mul(drift).Round(2)
		}
		if g.chance(g.cfg.StatusMismatchRate) {
			tx.status = g.otherStatus(tx.status)
		}
		txs = append(txs, tx)
	}

	extra := int(float64(len(source)) * g.cfg.ExtraRate)
	for i := 0; i < extra; i++ {
		linked := source[g.rng.Intn(len(source))]
		occurredAt := g.instantIn(period)
		txs = append(txs, transaction{
			id:         g.newID(),
			linkID:     linked.id,
			accountID:  linked.accountID,
			occurredAt: occurredAt,
			kind:       pick(g.rng, domain.TransactionTypes()),
			amount:     g.amountBetween(1, 1000),
			currency:   g.cfg.Currency,
			status:     pick(g.rng, domain.Statuses()),
			partner:    g.faker.Company(),
			payment:    pick(g.rng, counterpartPaymentMethods),
			createdAt:  occurredAt.Add(-g.minutes(60)),
			updatedAt:  occurredAt.Add(g.minutes(60)),
		})
	}

	g.rng.Shuffle(len(txs), func(i, j int) {
		txs[i], txs[j] = txs[j], txs[i]
	})
	return txs
}

func (g *Generator) accountTable(accounts []account) *dataset.Table {
	columns := domain.EntityAccounts.RawColumns()
	tab := dataset.NewTyped(columns, dataset.TextTypes(len(columns)))
	for i := range accounts {
		acc := &accounts[i]
		tab.Append(
			acc.id,
			acc.userID,
			string(acc.kind),
			g.renderTimestamp(acc.createdAt),
			g.renderTimestamp(acc.updatedAt),
		)
	}
	return tab
}

func (g *Generator) transactionTable(entity domain.EntityKind, txs []transaction) *dataset.Table {
	columns := entity.RawColumns()
	tab := dataset.NewTyped(columns, dataset.TextTypes(len(columns)))
	for i := range txs {
		tx := &txs[i]
		switch entity {
		case domain.EntitySourceTransactions:
			tab.Append(
				tx.id, tx.accountID, g.renderTimestamp(tx.occurredAt), string(tx.kind),
				g.renderAmount(tx.amount), g.renderCurrency(tx.currency), string(tx.status),
				tx.partner, tx.payment,
				g.renderTimestamp(tx.createdAt), g.renderTimestamp(tx.updatedAt),
			)
		case domain.EntityCounterpartTransactions:
			tab.Append(
				tx.id, tx.linkID, tx.accountID, g.renderTimestamp(tx.occurredAt),
				string(tx.kind), g.renderAmount(tx.amount), g.renderCurrency(tx.currency),
				string(tx.status), tx.payment,
				g.renderTimestamp(tx.createdAt), g.renderTimestamp(tx.updatedAt), tx.partner,
			)
		default:
			panic(fmt.Sprintf("generator: %q is not a transaction entity", entity))
		}
	}
	return tab
}

// instantIn picks a second-resolution instant inside the period's civil
// day in the feed's home timezone.
func (g *Generator) instantIn(period domain.Period) time.Time {
	start := time.Date(period.Date.Year, period.Date.Month, period.Date.Day, 0, 0, 0, 0, g.loc)
	return start.Add(time.Duration(g.rng.Int63n(24*60*60)) * time.Second)
}

// instantBefore picks an instant between two years and one month before
// the period, for historical roster entries.
func (g *Generator) instantBefore(period domain.Period) time.Time {
	start := time.Date(period.Date.Year, period.Date.Month, period.Date.Day, 0, 0, 0, 0, g.loc)
	back := time.Duration(31+g.rng.Intn(700)) * 24 * time.Hour
	return start.Add(-back).Add(time.Duration(g.rng.Int63n(24*60*60)) * time.Second)
}

func (g *Generator) minutes(n int) time.Duration {
	return time.Duration(g.rng.Intn(n+1)) * time.Minute
}

// amountBetween returns an exact two-decimal amount in [lo, hi].
func (g *Generator) amountBetween(lo, hi int64) decimal.Decimal {
	cents := lo*100 + g.rng.Int63n((hi-lo)*100+1)
	return decimal.New(cents, -2)
}

func (g *Generator) otherStatus(s domain.Status) domain.Status {
	others := make([]domain.Status, 0, 3)
	for _, candidate := range domain.Statuses() {
		if candidate != s {
			others = append(others, candidate)
		}
	}
	return pick(g.rng, others)
}

func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		panic(err) // a rand.Rand read cannot fail
	}
	return id.String()
}

func (g *Generator) chance(rate float64) bool {
	return rate > 0 && g.rng.Float64() < rate
}

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.Intn(len(options))]
}

// renderTimestamp rotates raw timestamp spellings across the accepted
// layouts, with a sliver of garbage, so the cleanse stage sees the full
// mess of a real export. The default spelling is offset RFC 3339, the
// way the upstream systems serialize.
func (g *Generator) renderTimestamp(t time.Time) string {
	if g.chance(g.cfg.GarbageRate) {
		return pick(g.rng, []string{"not-a-date", "31/31/2024 13:00:00 XX", "pending"})
	}
	if !g.chance(g.cfg.FormatNoiseRate) {
		return t.Format(time.RFC3339)
	}
	switch g.rng.Intn(4) {
	case 0:
		return t.Format("01/02/2006 03:04:05 PM")
	case 1:
		return t.Format("2006-01-02 15:04:05")
	case 2:
		return t.UTC().Format("20060102T150405Z")
	default:
		return t.Format("2006-01-02")
	}
}

func (g *Generator) renderAmount(d decimal.Decimal) string {
	if g.chance(g.cfg.GarbageRate) {
		return pick(g.rng, []string{"N/A", "1,234.56", ""})
	}
	if g.chance(g.cfg.FormatNoiseRate) {
		return "  " + d.StringFixed(2) + " "
	}
	return d.StringFixed(2)
}

func (g *Generator) renderCurrency(code string) string {
	if !g.chance(g.cfg.FormatNoiseRate) {
		return code
	}
	switch g.rng.Intn(3) {
	case 0:
		return " " + strings.ToLower(code) + " "
	case 1:
		return strings.Join(strings.Split(code, ""), "-")
	default:
		return strings.ToLower(code)
	}
}
