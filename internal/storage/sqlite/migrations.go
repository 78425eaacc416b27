package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Amounts are stored as TEXT and parsed with shopspring/decimal; summing
// happens in Go so SQLite never coerces money to floats. Person names carry
// COLLATE NOCASE so equality lookups and the (user_id, name) uniqueness are
// case-insensitive.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    currency_symbol TEXT NOT NULL DEFAULT '₹',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL COLLATE NOCASE,
    tracking_preference TEXT NOT NULL DEFAULT 'ASK',
    archived INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (user_id, name),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    payment_type TEXT NOT NULL DEFAULT 'cash',
    amount TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    is_borrowed INTEGER NOT NULL DEFAULT 0,
    borrowed_from TEXT NOT NULL DEFAULT '',
    is_for_others INTEGER NOT NULL DEFAULT 0,
    paid_for TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS incomes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    date TEXT NOT NULL,
    amount TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'other',
    payment_type TEXT NOT NULL DEFAULT 'cash',
    person TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    applied_to_people INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'manual',
    expense_id TEXT,
    income_id TEXT,
    note TEXT NOT NULL DEFAULT '',
    archived INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE,
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
    FOREIGN KEY (income_id) REFERENCES incomes(id) ON DELETE CASCADE,
    CHECK (expense_id IS NULL OR income_id IS NULL)
);

CREATE INDEX IF NOT EXISTS idx_people_user_id ON people(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_user_id ON expenses(user_id);
CREATE INDEX IF NOT EXISTS idx_incomes_user_id ON incomes(user_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_person_id ON ledger_entries(person_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_expense_id ON ledger_entries(expense_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_income_id ON ledger_entries(income_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
