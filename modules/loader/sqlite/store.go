package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/pkg/message"
)

// Load implements buffer.Loader: it returns the conversation's messages in
// chronological order with profile fields attached for display resolution.
func (s *Store) Load(ctx context.Context, conversationID string) ([]buffer.PersistedMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content, sender_kind, sender_id, first_name, last_name, username, metadata, created_at
		FROM conversation_messages
		WHERE conversation_id = ?
		ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load conversation %s: %w", conversationID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []buffer.PersistedMessage
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load rows: %w", err)
	}
	return records, nil
}

// Save appends a message to the conversation's persisted history. The
// sequence number is assigned atomically from the current maximum.
func (s *Store) Save(ctx context.Context, conversationID string, rec buffer.PersistedMessage) error {
	metadataJSON := []byte("{}")
	if len(rec.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("sqlite: marshal metadata: %w", err)
		}
	}

	var firstName, lastName, username string
	if rec.Profile != nil {
		firstName = rec.Profile.FirstName
		lastName = rec.Profile.LastName
		username = rec.Profile.Username
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages
			(conversation_id, seq, content, sender_kind, sender_id, first_name, last_name, username, metadata, created_at)
		VALUES (?, COALESCE((SELECT MAX(seq) FROM conversation_messages WHERE conversation_id = ?), 0) + 1,
		        ?, ?, ?, ?, ?, ?, ?, ?)`,
		conversationID, conversationID,
		rec.Content, string(rec.SenderKind), rec.SenderID,
		firstName, lastName, username,
		string(metadataJSON), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save message: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (buffer.PersistedMessage, error) {
	var rec buffer.PersistedMessage
	var senderKind, firstName, lastName, username, metadataJSON, createdAt string
	if err := rows.Scan(&rec.Content, &senderKind, &rec.SenderID, &firstName, &lastName, &username, &metadataJSON, &createdAt); err != nil {
		return rec, fmt.Errorf("sqlite: scan message: %w", err)
	}

	rec.SenderKind = message.SenderType(senderKind)

	if firstName != "" || lastName != "" || username != "" {
		rec.Profile = &message.Profile{
			FirstName: firstName,
			LastName:  lastName,
			Username:  username,
		}
	}

	if metadataJSON != "" && metadataJSON != "{}" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			// Malformed metadata is tolerated; the content still loads.
			rec.Metadata = nil
		}
	}

	// A malformed timestamp loads as the zero time and renders as the
	// "Unknown time" sentinel downstream.
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	} else if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		rec.CreatedAt = t
	}

	return rec, nil
}
