package webhook

import (
	"context"
	"database/sql"
	"errors"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

// Store upserts identity-provider users. Keyed by provider subject, with a
// unique email: if the provider re-issues a known email under a new subject
// (account deleted and recreated), the row is re-keyed instead of violating
// the email constraint.
type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	return s.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing models.User
		err := tx.NewSelect().
			Model(&existing).
			Where("email = ?", user.Email).
			Limit(1).
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// fresh email, plain upsert on the id
			_, err = tx.NewInsert().
				Model(user).
				On("CONFLICT (id) DO UPDATE").
				Set("email = EXCLUDED.email").
				Set("first_name = EXCLUDED.first_name").
				Set("last_name = EXCLUDED.last_name").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx)
			return err
		case err != nil:
			return err
		}

		if existing.ID == user.ID {
			_, err = tx.NewUpdate().
				Model(user).
				Column("email", "first_name", "last_name", "updated_at").
				WherePK().
				Exec(ctx)
			return err
		}

		// same email, new subject: re-key the row
		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("id = ?", user.ID).
			Set("first_name = ?", user.FirstName).
			Set("last_name = ?", user.LastName).
			Set("updated_at = ?", user.UpdatedAt).
			Where("email = ?", user.Email).
			Exec(ctx)
		return err
	})
}
