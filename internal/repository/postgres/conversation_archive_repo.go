// internal/repository/postgres/conversation_archive_repo.go
package postgres

import (
	"context"
	"fmt"

	"leadflow-service/internal/domain/conversation"
)

// ConversationArchiveRepository writes finished conversations and their
// transcripts to PostgreSQL. Archival happens after finish and never blocks
// the attendance path.
type ConversationArchiveRepository struct {
	db *DB
}

func NewConversationArchiveRepository(db *DB) *ConversationArchiveRepository {
	return &ConversationArchiveRepository{db: db}
}

// Archive stores the conversation header and full transcript in one
// transaction. Re-archiving the same conversation upserts the header and
// skips already stored messages, so retries are safe.
func (r *ConversationArchiveRepository) Archive(ctx context.Context, conv conversation.Conversation) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	convQuery := `
		INSERT INTO conversations (id, assigned_agent_id, status, contact_channel,
			customer_name, interest, qualification, score, estimated_value,
			wait_time_minutes, sale, claimed_at, last_message_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			sale = EXCLUDED.sale,
			last_message_at = EXCLUDED.last_message_at,
			finished_at = EXCLUDED.finished_at
	`

	_, err = tx.Exec(
		ctx, convQuery,
		conv.ID, conv.AssignedAgentID, conv.Status, conv.ContactChannel,
		conv.CustomerName, conv.Interest, conv.Qualification, conv.Score, conv.EstimatedValue,
		conv.WaitTimeMinutes, conv.Sale, conv.ClaimedAt, conv.LastMessageAt, conv.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive conversation %s: %w", conv.ID, err)
	}

	msgQuery := `
		INSERT INTO conversation_messages (id, conversation_id, author_kind, content,
			sent_at, sequence, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			delivery_status = EXCLUDED.delivery_status
	`

	for _, msg := range conv.Messages {
		_, err = tx.Exec(
			ctx, msgQuery,
			msg.ID, msg.ConversationID, msg.AuthorKind, msg.Content,
			msg.Timestamp, msg.Sequence, msg.DeliveryStatus,
		)
		if err != nil {
			return fmt.Errorf("failed to archive message %s: %w", msg.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit archive tx: %w", err)
	}
	return nil
}
