package sqlstore

import (
	"github.com/pliu/huntlink/internal/models"
)

// SaveAlert persists a new alert in the active state and writes the generated
// id, status and server timestamp back into alert.
func (s *SQLStore) SaveAlert(alert *models.EmergencyAlert) error {
	query := s.rebind(`INSERT INTO emergency_alerts
		(user_id, group_id, alert_type, latitude, longitude, description)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`)
	if err := s.db.QueryRow(query,
		alert.UserID, alert.GroupID, alert.AlertType,
		alert.Latitude, alert.Longitude, alert.Description,
	).Scan(&alert.ID, &alert.CreatedAt); err != nil {
		return err
	}
	alert.Status = models.AlertActive
	return nil
}

// ResolveAlert transitions an alert from active to resolved, recording the
// resolver and resolution timestamp. The update is guarded on the current
// status, so only the first resolver wins; it returns false when the alert
// was not active (already resolved or unknown id).
func (s *SQLStore) ResolveAlert(alertID, resolvedBy int) (bool, error) {
	query := s.rebind(`UPDATE emergency_alerts
		SET status = ?, resolved_by = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`)
	res, err := s.db.Exec(query, models.AlertResolved, resolvedBy, alertID, models.AlertActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetAlert reads an alert joined with the raiser's identity.
func (s *SQLStore) GetAlert(alertID int) (*models.EmergencyAlert, error) {
	var a models.EmergencyAlert
	query := s.rebind(`
		SELECT ea.id, ea.user_id, ea.group_id, ea.alert_type, ea.latitude, ea.longitude,
		       COALESCE(ea.description, ''), ea.status, ea.resolved_by, ea.created_at, ea.resolved_at,
		       u.username, u.full_name
		FROM emergency_alerts ea
		JOIN users u ON ea.user_id = u.id
		WHERE ea.id = ?
	`)
	err := s.db.QueryRow(query, alertID).Scan(
		&a.ID, &a.UserID, &a.GroupID, &a.AlertType, &a.Latitude, &a.Longitude,
		&a.Description, &a.Status, &a.ResolvedBy, &a.CreatedAt, &a.ResolvedAt,
		&a.Username, &a.FullName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
