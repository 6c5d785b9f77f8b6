package sqlstore

import (
	"github.com/pliu/huntlink/internal/models"
)

func (s *SQLStore) CreateGroup(name string, ownerID int) (int64, error) {
	var id int64
	query := s.rebind("INSERT INTO groups (name, owner_id) VALUES (?, ?) RETURNING id")
	err := s.db.QueryRow(query, name, ownerID).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) AddMember(groupID, userID int) error {
	query := s.rebind("INSERT INTO group_members (group_id, user_id) VALUES (?, ?)")
	_, err := s.db.Exec(query, groupID, userID)
	return err
}

func (s *SQLStore) RemoveMember(groupID, userID int) error {
	query := s.rebind("DELETE FROM group_members WHERE group_id = ? AND user_id = ?")
	_, err := s.db.Exec(query, groupID, userID)
	return err
}

func (s *SQLStore) IsMember(userID, groupID int) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = ? AND group_id = ?)")
	err := s.db.QueryRow(query, userID, groupID).Scan(&exists)
	return exists, err
}

func (s *SQLStore) GetUserGroups(userID int) ([]models.Group, error) {
	query := s.rebind(`
		SELECT g.id, g.name, g.owner_id, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = ?
	`)
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *SQLStore) GetGroupMembers(groupID int) ([]models.User, error) {
	query := s.rebind(`
		SELECT u.id, u.username, u.full_name, COALESCE(u.phone_number, ''), u.is_active, u.last_seen
		FROM users u
		JOIN group_members gm ON u.id = gm.user_id
		WHERE gm.group_id = ?
	`)
	rows, err := s.db.Query(query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.PhoneNumber, &u.IsActive, &u.LastSeen); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
