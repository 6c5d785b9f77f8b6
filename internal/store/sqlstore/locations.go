package sqlstore

import (
	"github.com/pliu/huntlink/internal/models"
)

// SaveLocation appends a location report. The generated id and the server
// timestamp are written back into loc.
func (s *SQLStore) SaveLocation(loc *models.LocationUpdate) error {
	query := s.rebind(`INSERT INTO location_updates
		(user_id, group_id, latitude, longitude, accuracy, altitude, heading, speed, battery_level, is_emergency, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, timestamp`)
	return s.db.QueryRow(query,
		loc.UserID, loc.GroupID, loc.Latitude, loc.Longitude,
		loc.Accuracy, loc.Altitude, loc.Heading, loc.Speed, loc.BatteryLevel,
		loc.IsEmergency, loc.Notes,
	).Scan(&loc.ID, &loc.Timestamp)
}

// GetGroupLocations returns one row per current group member who has ever
// reported a location in the group: the row with the greatest timestamp for
// that member (latest wins), joined with display identity.
func (s *SQLStore) GetGroupLocations(groupID int) ([]models.MemberLocation, error) {
	query := s.rebind(`
		SELECT lu.id, lu.user_id, lu.group_id, lu.latitude, lu.longitude,
		       lu.accuracy, lu.altitude, lu.heading, lu.speed, lu.battery_level,
		       lu.is_emergency, COALESCE(lu.notes, ''), lu.timestamp,
		       u.username, u.full_name
		FROM location_updates lu
		JOIN users u ON u.id = lu.user_id
		JOIN group_members gm ON gm.user_id = lu.user_id AND gm.group_id = lu.group_id
		WHERE lu.group_id = ?
		  AND lu.id = (
			SELECT l2.id FROM location_updates l2
			WHERE l2.user_id = lu.user_id AND l2.group_id = lu.group_id
			ORDER BY l2.timestamp DESC, l2.id DESC
			LIMIT 1
		  )
		ORDER BY u.username
	`)
	rows, err := s.db.Query(query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.MemberLocation
	for rows.Next() {
		var ml models.MemberLocation
		if err := rows.Scan(
			&ml.ID, &ml.UserID, &ml.GroupID, &ml.Latitude, &ml.Longitude,
			&ml.Accuracy, &ml.Altitude, &ml.Heading, &ml.Speed, &ml.BatteryLevel,
			&ml.IsEmergency, &ml.Notes, &ml.Timestamp,
			&ml.Username, &ml.FullName,
		); err != nil {
			return nil, err
		}
		locations = append(locations, ml)
	}
	return locations, rows.Err()
}
