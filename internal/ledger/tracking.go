package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

// RestoreMode selects what happens to an archived person's ledger history
// when tracking is restored.
type RestoreMode string

const (
	// RestoreReapply un-archives the ledger rows so the previous balance
	// reappears, and sets the preference back to Track.
	RestoreReapply RestoreMode = "reapply"

	// RestoreStartFresh keeps the old rows archived so the balance starts
	// at zero. The preference is left for the caller to set.
	RestoreStartFresh RestoreMode = "start_fresh"
)

// SetTrack sets a person's preference to Track. Reconciliations touching the
// person auto-apply from now on. Preference changes are explicit user
// actions only; the engine never changes them as a reconciliation side
// effect.
func (e *Engine) SetTrack(ctx context.Context, userID, personID string) error {
	return e.setPreference(ctx, userID, personID, models.Track)
}

// SetAsk sets a person's preference to Ask: reconciliations defer until the
// user decides per record, with no timeout.
func (e *Engine) SetAsk(ctx context.Context, userID, personID string) error {
	return e.setPreference(ctx, userID, personID, models.Ask)
}

func (e *Engine) setPreference(ctx context.Context, userID, personID string, pref models.TrackingPreference) error {
	return e.store.WithTx(ctx, func(tx storage.Store) error {
		person, err := tx.GetPerson(ctx, userID, personID)
		if err != nil {
			return err
		}
		person.TrackingPreference = pref
		return tx.UpdatePerson(ctx, person)
	})
}

// SetNoTrack sets the preference to NoTrack, archives the person, and
// archives all of their ledger entries. Nothing is deleted: the rows stay in
// storage but drop out of active balance sums until restored.
func (e *Engine) SetNoTrack(ctx context.Context, userID, personID string) error {
	return e.store.WithTx(ctx, func(tx storage.Store) error {
		person, err := tx.GetPerson(ctx, userID, personID)
		if err != nil {
			return err
		}
		person.TrackingPreference = models.NoTrack
		person.Archived = true
		if err := tx.UpdatePerson(ctx, person); err != nil {
			return err
		}
		return tx.SetEntriesArchivedForPerson(ctx, userID, personID, true)
	})
}

// Restore un-archives a person previously set to NoTrack. See RestoreMode
// for what happens to their ledger history.
func (e *Engine) Restore(ctx context.Context, userID, personID string, mode RestoreMode) error {
	switch mode {
	case RestoreReapply, RestoreStartFresh:
	default:
		return fmt.Errorf("invalid restore mode %q", mode)
	}

	return e.store.WithTx(ctx, func(tx storage.Store) error {
		person, err := tx.GetPerson(ctx, userID, personID)
		if err != nil {
			return err
		}
		person.Archived = false
		if mode == RestoreReapply {
			person.TrackingPreference = models.Track
		}
		if err := tx.UpdatePerson(ctx, person); err != nil {
			return err
		}
		if mode == RestoreReapply {
			return tx.SetEntriesArchivedForPerson(ctx, userID, personID, false)
		}
		return nil
	})
}
