// internal/repository/postgres/lead_intake_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadflow-service/internal/domain/lead"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// LeadIntakeRepository persists incoming leads so the in-memory queue can be
// reseeded after a restart. Claimed leads are tombstoned, not deleted.
type LeadIntakeRepository struct {
	db *DB
}

func NewLeadIntakeRepository(db *DB) *LeadIntakeRepository {
	return &LeadIntakeRepository{db: db}
}

// Insert records a newly created lead
func (r *LeadIntakeRepository) Insert(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (id, contact_channel, customer_name, interest, qualification,
			score, priority, estimated_value, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool().Exec(
		ctx, query,
		l.ID, l.ContactChannel, l.CustomerName, l.Interest, l.Qualification,
		l.Score, l.Priority, l.EstimatedValue, []string(l.Tags), l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// MarkClaimed tombstones a lead once an agent has won it
func (r *LeadIntakeRepository) MarkClaimed(ctx context.Context, leadID, agentID string) error {
	query := `
		UPDATE leads
		SET claimed_by = $2, claimed_at = NOW()
		WHERE id = $1 AND claimed_by IS NULL
	`

	tag, err := r.db.Pool().Exec(ctx, query, leadID, agentID)
	if err != nil {
		return fmt.Errorf("failed to mark lead claimed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %s already claimed or missing", leadID)
	}
	return nil
}

// LoadUnclaimed returns every lead that has not been claimed yet, oldest
// first, for seeding the queue at boot.
func (r *LeadIntakeRepository) LoadUnclaimed(ctx context.Context) ([]lead.Lead, error) {
	query := `
		SELECT id, contact_channel, customer_name, interest, qualification,
			score, priority, estimated_value, tags, created_at
		FROM leads
		WHERE claimed_by IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load unclaimed leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		var l lead.Lead
		var tags []string
		if err := rows.Scan(
			&l.ID, &l.ContactChannel, &l.CustomerName, &l.Interest, &l.Qualification,
			&l.Score, &l.Priority, &l.EstimatedValue, &tags, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		l.Tags = pq.StringArray(tags)
		leads = append(leads, l)
	}

	return leads, rows.Err()
}
