package sqlstore

import (
	"github.com/pliu/huntlink/internal/models"
)

// SaveMessage persists a chat message and writes the generated id and server
// timestamp back into msg. Messages are immutable once created.
func (s *SQLStore) SaveMessage(msg *models.Message) error {
	query := s.rebind(`INSERT INTO messages
		(group_id, sender_id, message_type, content, latitude, longitude, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, sent_at`)
	return s.db.QueryRow(query,
		msg.GroupID, msg.SenderID, msg.MessageType, msg.Content,
		msg.Latitude, msg.Longitude, msg.Priority,
	).Scan(&msg.ID, &msg.SentAt)
}

// MarkMessageRead records that a reader has seen a message. Re-marking the
// same pair is a no-op, not an error.
func (s *SQLStore) MarkMessageRead(messageID, userID int) error {
	query := s.rebind(`INSERT INTO message_reads (message_id, user_id)
		VALUES (?, ?)
		ON CONFLICT (message_id, user_id) DO NOTHING`)
	_, err := s.db.Exec(query, messageID, userID)
	return err
}

func (s *SQLStore) GetGroupMessages(groupID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.rebind(`
		SELECT m.id, m.group_id, m.sender_id, u.username, u.full_name,
		       m.message_type, m.content, m.latitude, m.longitude, m.priority, m.sent_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.group_id = ?
		ORDER BY m.sent_at DESC, m.id DESC
		LIMIT ?
	`)
	rows, err := s.db.Query(query, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.GroupID, &m.SenderID, &m.Username, &m.FullName,
			&m.MessageType, &m.Content, &m.Latitude, &m.Longitude, &m.Priority, &m.SentAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
