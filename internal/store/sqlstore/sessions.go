package sqlstore

import (
	"strings"
	"time"

	"github.com/pliu/huntlink/internal/models"
)

// AttachSession upserts the session row for a user: new socket id, liveness
// true, last_ping refreshed. A prior session for the same user is implicitly
// superseded (last write wins).
func (s *SQLStore) AttachSession(userID int, socketID string) error {
	query := s.rebind(`INSERT INTO user_sessions (user_id, socket_id, is_active)
		VALUES (?, ?, TRUE)
		ON CONFLICT (user_id)
		DO UPDATE SET socket_id = excluded.socket_id, is_active = TRUE, last_ping = CURRENT_TIMESTAMP`)
	_, err := s.db.Exec(query, userID, socketID)
	return err
}

// DetachSession marks the session inactive only while the stored socket id
// still matches, so a stale leave cannot clobber a newer attach.
func (s *SQLStore) DetachSession(userID int, socketID string) error {
	query := s.rebind("UPDATE user_sessions SET is_active = FALSE WHERE user_id = ? AND socket_id = ?")
	_, err := s.db.Exec(query, userID, socketID)
	return err
}

// TouchSessions refreshes last_ping for the given live sockets.
func (s *SQLStore) TouchSessions(socketIDs []string) error {
	if len(socketIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(socketIDs)), ", ")
	query := s.rebind("UPDATE user_sessions SET last_ping = CURRENT_TIMESTAMP WHERE socket_id IN (" + placeholders + ")")
	args := make([]interface{}, len(socketIDs))
	for i, id := range socketIDs {
		args[i] = id
	}
	_, err := s.db.Exec(query, args...)
	return err
}

// SweepStaleSessions demotes sessions whose last_ping is older than the
// threshold. Returns the number of sessions demoted.
func (s *SQLStore) SweepStaleSessions(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")
	query := s.rebind("UPDATE user_sessions SET is_active = FALSE WHERE is_active = TRUE AND last_ping < ?")
	res, err := s.db.Exec(query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) GetSession(userID int) (*models.Session, error) {
	var sess models.Session
	query := s.rebind("SELECT user_id, socket_id, is_active, last_ping FROM user_sessions WHERE user_id = ?")
	err := s.db.QueryRow(query, userID).Scan(&sess.UserID, &sess.SocketID, &sess.IsActive, &sess.LastPing)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
