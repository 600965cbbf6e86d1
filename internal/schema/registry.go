// Package schema declares the canonical column set of the users table and
// everything derived from it: additive schema reconciliation and the vetting
// rules applied to externally supplied field values.
//
// The registry is the single source of truth. Adding a persisted attribute
// means adding one Column entry here; reconciliation and vetting pick it up
// without further changes.
package schema

type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
)

// Column describes one persisted attribute of a user record.
type Column struct {
	Name    string
	Kind    Kind
	Default string // SQL literal used in CREATE TABLE / ADD COLUMN defaults

	// Base columns are part of the minimal CREATE TABLE; the rest are
	// reconciled in additively, matching how the table grew in production.
	Base bool

	// Updatable columns may be written through Vet + Repository.Apply.
	Updatable bool

	// Clamped numeric columns are forced into [Min, Max] by Vet.
	// Max <= Min means no upper bound.
	Clamped  bool
	Min, Max float64
}

// oneYear is the upper bound for the duration configuration columns.
const oneYear = 31536000 // seconds

// Columns is the registry, in table order.
var Columns = []Column{
	{Name: "user_id", Kind: KindInt, Base: true},
	{Name: "username", Kind: KindText, Default: "''", Base: true},
	{Name: "first_name", Kind: KindText, Default: "''", Base: true},
	{Name: "last_name", Kind: KindText, Default: "''", Base: true},
	{Name: "language", Kind: KindText, Default: "''", Base: true},
	{Name: "created_at", Kind: KindInt, Default: "0", Base: true},
	{Name: "last_seen", Kind: KindInt, Default: "0", Base: true},

	{Name: "win_chance", Kind: KindFloat, Default: "1.0", Base: true, Updatable: true, Clamped: true, Min: 0, Max: 100},
	{Name: "gen_level", Kind: KindInt, Default: "0", Base: true, Updatable: true, Clamped: true, Min: 0, Max: 999},

	{Name: "bal_mmc", Kind: KindFloat, Default: "0", Base: true, Updatable: true},
	{Name: "bal_ton", Kind: KindFloat, Default: "0", Base: true, Updatable: true},
	{Name: "bal_usdt", Kind: KindFloat, Default: "0", Base: true, Updatable: true},
	{Name: "bal_stars", Kind: KindFloat, Default: "0", Base: true, Updatable: true},

	{Name: "minutes_in_app", Kind: KindInt, Default: "0", Updatable: true, Clamped: true, Min: 0},
	{Name: "wallet_status", Kind: KindText, Default: "'idle'", Updatable: true},
	{Name: "wallet_address", Kind: KindText, Default: "''", Updatable: true},
	{Name: "t_wallet_seconds", Kind: KindInt, Default: "0", Updatable: true, Clamped: true, Min: 0, Max: oneYear},
	{Name: "t_seed_seconds", Kind: KindInt, Default: "900", Updatable: true, Clamped: true, Min: 0, Max: oneYear},
}

var byName = func() map[string]Column {
	m := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		m[c.Name] = c
	}
	return m
}()

// Lookup returns the registry entry for a column name.
func Lookup(name string) (Column, bool) {
	c, ok := byName[name]
	return c, ok
}

func (c Column) sqlType() string {
	switch c.Kind {
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// DDL returns the column definition fragment used by CREATE TABLE and
// ALTER TABLE ADD COLUMN.
func (c Column) DDL() string {
	if c.Name == "user_id" {
		return "user_id INTEGER PRIMARY KEY"
	}
	return c.Name + " " + c.sqlType() + " DEFAULT " + c.Default
}
