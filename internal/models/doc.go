// Package models defines the core domain models for Kharcha.
//
// # Models
//
//   - User: a registered account; every other record is scoped to one user
//   - Person: a third party the user has money interactions with
//   - LedgerEntry: one signed balance adjustment between the user and a person
//   - Expense: money spent, optionally borrowed from or paid for a person
//   - Income: money received, optionally linked to a person (loans, repayments)
//
// # Sign convention
//
// Ledger amounts are signed from the user's point of view:
//
//   - Positive: the person owes the user more
//   - Negative: the user owes the person more
//
// # Design principles
//
//  1. People are referenced by normalized name on expenses and incomes, and by
//     ID on ledger entries. Name fields are normalized at every write site so
//     lookups stay stable regardless of input casing.
//  2. Ledger entries linked to an expense or income are derived data: they are
//     rebuilt (not appended) whenever the originating record is saved, and
//     hard-deleted when it is deleted.
//  3. Avoid circular references: relationships use ID strings, not pointers.
package models
