package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

const personColumns = "id, user_id, name, tracking_preference, archived, created_at, updated_at"

// CreatePerson inserts a new person. The (user_id, name) pair is unique
// case-insensitively; a duplicate name surfaces as a constraint error.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	person.UpdatedAt = now
	if person.TrackingPreference == "" {
		person.TrackingPreference = models.Ask
	}

	_, err := s.q().ExecContext(ctx, `
		INSERT INTO people (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.UserID, person.Name, string(person.TrackingPreference),
		person.Archived, person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID, scoped to the owning user.
func (s *SQLiteStore) GetPerson(ctx context.Context, userID, id string) (*models.Person, error) {
	return s.getPerson(ctx, "user_id = ? AND id = ?", userID, id)
}

// GetPersonByName retrieves a person by exact name match, scoped to the
// owning user. The name column is NOCASE so "ravi" finds "Ravi".
func (s *SQLiteStore) GetPersonByName(ctx context.Context, userID, name string) (*models.Person, error) {
	return s.getPerson(ctx, "user_id = ? AND name = ?", userID, name)
}

func (s *SQLiteStore) getPerson(ctx context.Context, where string, args ...any) (*models.Person, error) {
	row := s.q().QueryRowContext(ctx, "SELECT "+personColumns+" FROM people WHERE "+where, args...)
	person, err := scanPerson(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

func scanPerson(scan func(dest ...any) error) (*models.Person, error) {
	person := &models.Person{}
	var pref string
	err := scan(
		&person.ID, &person.UserID, &person.Name, &pref,
		&person.Archived, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	person.TrackingPreference = models.TrackingPreference(pref)
	return person, nil
}

// UpdatePerson updates a person's mutable fields (name, preference, archived).
func (s *SQLiteStore) UpdatePerson(ctx context.Context, person *models.Person) error {
	person.UpdatedAt = time.Now().Unix()
	res, err := s.q().ExecContext(ctx, `
		UPDATE people
		SET name = ?, tracking_preference = ?, archived = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		person.Name, string(person.TrackingPreference), person.Archived,
		person.UpdatedAt, person.UserID, person.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return requireRow(res)
}

// DeletePerson hard-deletes a person. The schema cascades the delete to all
// of the person's ledger entries; full history loss is accepted on explicit
// person deletion.
func (s *SQLiteStore) DeletePerson(ctx context.Context, userID, id string) error {
	res, err := s.q().ExecContext(ctx,
		"DELETE FROM people WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return requireRow(res)
}

// ListPeople returns people for the user with their active balance and last
// ledger activity, most recently active first. The listing and the balance
// reads run in one transaction so the summary is a consistent snapshot.
func (s *SQLiteStore) ListPeople(ctx context.Context, userID string, opts storage.ListPeopleOptions) ([]storage.PersonSummary, error) {
	var summaries []storage.PersonSummary
	err := s.WithTx(ctx, func(tx storage.Store) error {
		var err error
		summaries, err = tx.(*SQLiteStore).listPeople(ctx, userID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *SQLiteStore) listPeople(ctx context.Context, userID string, opts storage.ListPeopleOptions) ([]storage.PersonSummary, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.tracking_preference, p.archived,
		       p.created_at, p.updated_at,
		       COALESCE(MAX(l.created_at), 0) AS last_activity,
		       COUNT(l.id) AS active_entries
		FROM people p
		LEFT JOIN ledger_entries l ON l.person_id = p.id AND l.archived = 0
		WHERE p.user_id = ?`
	args := []any{userID}

	if opts.Search != "" {
		query += ` AND p.name LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, escapeLike(opts.Search))
	}
	if opts.TrackedOnly {
		query += " AND p.tracking_preference = ? AND p.archived = 0"
		args = append(args, string(models.Track))
	}

	query += " GROUP BY p.id"
	if opts.TrackedOnly {
		query += " HAVING COUNT(l.id) > 0"
	}
	query += " ORDER BY last_activity DESC, p.name"

	rows, err := s.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var summaries []storage.PersonSummary
	for rows.Next() {
		var sum storage.PersonSummary
		var pref string
		var activeEntries int
		err := rows.Scan(
			&sum.Person.ID, &sum.Person.UserID, &sum.Person.Name, &pref,
			&sum.Person.Archived, &sum.Person.CreatedAt, &sum.Person.UpdatedAt,
			&sum.LastActivity, &activeEntries,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		sum.Person.TrackingPreference = models.TrackingPreference(pref)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	// Balances are summed in Go over the TEXT amounts; one query per person
	// keeps money out of SQLite's float arithmetic.
	for i := range summaries {
		balance, err := s.PersonBalance(ctx, userID, summaries[i].Person.ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Balance = balance
	}

	return summaries, nil
}

// escapeLike neutralizes LIKE metacharacters in user search input so a
// query such as "50%" matches the literal text instead of everything.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// requireRow converts a zero-row update/delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
