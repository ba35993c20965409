// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// sentinelHypothesisID marks a plan whose hypothesis text matched no
// persisted hypothesis row.
const sentinelHypothesisID = 0

// PersistRunArtifacts writes a run's clusters, hypotheses, and plans in a
// single transaction. Hypothesis rows are flushed first so each plan can
// be linked to a hypothesis by exact text equality (first match wins; no
// match stores the sentinel id). On any failure the whole run's artifacts
// roll back together.
func (s *Store) PersistRunArtifacts(
	ctx context.Context,
	sc scope.ID,
	runID string,
	clusters []types.Cluster,
	hypotheses []types.Hypothesis,
	plans []types.ExperimentPlan,
) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range clusters {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cluster_results (user_id, run_id, cluster_label, paper_ids_csv, rationale)
			 VALUES (?, ?, ?, ?, ?)`,
			string(sc), runID, c.Label, joinPaperIDs(c.PaperIDs), c.Rationale,
		)
		if err != nil {
			return fmt.Errorf("inserting cluster %q: %w", c.Label, err)
		}
	}

	// Insert hypotheses and capture their row ids for plan linkage.
	hypIDs := make([]int64, 0, len(hypotheses))
	for _, h := range hypotheses {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO hypotheses (user_id, run_id, text, supports) VALUES (?, ?, ?, ?)`,
			string(sc), runID, h.Text, strings.Join(h.SupportingPapers, "\n"),
		)
		if err != nil {
			return fmt.Errorf("inserting hypothesis: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading hypothesis id: %w", err)
		}
		hypIDs = append(hypIDs, id)
	}

	for _, p := range plans {
		hypID := int64(sentinelHypothesisID)
		for i, h := range hypotheses {
			if h.Text == p.HypothesisText {
				hypID = hypIDs[i]
				break
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO experiment_plans (user_id, run_id, hypothesis_id, plan) VALUES (?, ?, ?, ?)`,
			string(sc), runID, hypID, FormatPlanBlob(p),
		)
		if err != nil {
			return fmt.Errorf("inserting plan: %w", err)
		}
	}

	return tx.Commit()
}

// StoredHypothesis is a persisted hypothesis row.
type StoredHypothesis struct {
	ID       int64
	RunID    string
	Text     string
	Supports string
}

// StoredPlan is a persisted experiment-plan row.
type StoredPlan struct {
	ID           int64
	RunID        string
	HypothesisID int64
	Plan         string
}

// RunHypotheses returns the hypothesis rows persisted for a run.
func (s *Store) RunHypotheses(ctx context.Context, sc scope.ID, runID string) ([]StoredHypothesis, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, text, supports FROM hypotheses
		 WHERE user_id = ? AND run_id = ? ORDER BY id`,
		string(sc), runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying hypotheses: %w", err)
	}
	defer rows.Close()

	var out []StoredHypothesis
	for rows.Next() {
		var h StoredHypothesis
		if err := rows.Scan(&h.ID, &h.RunID, &h.Text, &h.Supports); err != nil {
			return nil, fmt.Errorf("scanning hypothesis: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// RunPlans returns the experiment-plan rows persisted for a run.
func (s *Store) RunPlans(ctx context.Context, sc scope.ID, runID string) ([]StoredPlan, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, hypothesis_id, plan FROM experiment_plans
		 WHERE user_id = ? AND run_id = ? ORDER BY id`,
		string(sc), runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var out []StoredPlan
	for rows.Next() {
		var p StoredPlan
		if err := rows.Scan(&p.ID, &p.RunID, &p.HypothesisID, &p.Plan); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FormatPlanBlob renders a plan as one text blob with four labeled bullet
// sections in fixed order.
func FormatPlanBlob(p types.ExperimentPlan) string {
	var b strings.Builder
	writeSection := func(label string, items []string) {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label + ":")
		for _, it := range items {
			b.WriteString("\n- " + it)
		}
	}
	writeSection("Steps", p.Steps)
	writeSection("Datasets", p.Datasets)
	writeSection("Metrics", p.Metrics)
	writeSection("Risks", p.Risks)
	return b.String()
}

func joinPaperIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
