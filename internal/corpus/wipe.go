// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-assistant/internal/scope"
)

// wipeOrder lists the five tables children-first, for portability across
// engines without cascading deletes.
var wipeOrder = []string{
	"chunks",
	"experiment_plans",
	"hypotheses",
	"cluster_results",
	"papers",
}

// DeleteScope removes every row belonging to one scope across all five
// tables. Wiping an already-empty scope succeeds.
func (s *Store) DeleteScope(ctx context.Context, sc scope.ID) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range wipeOrder {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE user_id = ?`, string(sc),
		); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// DeleteAll removes every row across all scopes. Idempotent.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range wipeOrder {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	return tx.Commit()
}
