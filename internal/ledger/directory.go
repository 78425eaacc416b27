package ledger

import (
	"context"
	"errors"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

// FindByName resolves a person by raw name, scoped to the user. The name is
// normalized before a case-insensitive exact match. Lookup only: it never
// creates or mutates anything. A blank name or no match returns (nil, nil).
func (e *Engine) FindByName(ctx context.Context, userID, rawName string) (*models.Person, error) {
	return findByName(ctx, e.store, userID, rawName)
}

func findByName(ctx context.Context, s storage.Store, userID, rawName string) (*models.Person, error) {
	name := models.NormalizeName(rawName)
	if name == "" {
		return nil, nil
	}
	person, err := s.GetPersonByName(ctx, userID, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

// FindOrCreateByName resolves a person by raw name, creating them with the
// default Ask preference if absent. Use only after explicit user consent;
// people must never appear as a side effect of unrelated reads.
//
// Returns (nil, nil) only when the name is blank after normalization. If a
// match exists under a different stored casing or spacing, the stored name is
// corrected in place.
func (e *Engine) FindOrCreateByName(ctx context.Context, userID, rawName string) (*models.Person, error) {
	name := models.NormalizeName(rawName)
	if name == "" {
		return nil, nil
	}

	var person *models.Person
	err := e.store.WithTx(ctx, func(tx storage.Store) error {
		existing, err := tx.GetPersonByName(ctx, userID, name)
		if err == nil {
			if existing.Name != name {
				existing.Name = name
				if err := tx.UpdatePerson(ctx, existing); err != nil {
					return err
				}
			}
			person = existing
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		person = &models.Person{
			UserID:             userID,
			Name:               name,
			TrackingPreference: models.Ask,
		}
		return tx.CreatePerson(ctx, person)
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}
