package sqlstore

import (
	"github.com/pliu/huntlink/internal/models"
)

const userColumns = `id, username, email, password_hash, full_name,
	COALESCE(phone_number, ''), COALESCE(emergency_contact_name, ''),
	COALESCE(emergency_contact_phone, ''), is_active, last_seen`

func (s *SQLStore) CreateUser(user *models.User) error {
	query := s.rebind(`INSERT INTO users
		(username, email, password_hash, full_name, phone_number, emergency_contact_name, emergency_contact_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return s.db.QueryRow(query,
		user.Username, user.Email, user.Password, user.FullName,
		user.PhoneNumber, user.EmergencyContactName, user.EmergencyContactPhone,
	).Scan(&user.ID)
}

func (s *SQLStore) scanUser(query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(s.rebind(query), arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.FullName,
		&user.PhoneNumber, &user.EmergencyContactName, &user.EmergencyContactPhone,
		&user.IsActive, &user.LastSeen,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) GetUserByEmail(email string) (*models.User, error) {
	return s.scanUser("SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	return s.scanUser("SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (s *SQLStore) GetUserByID(id int) (*models.User, error) {
	return s.scanUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (s *SQLStore) TouchLastSeen(userID int) error {
	query := s.rebind("UPDATE users SET last_seen = CURRENT_TIMESTAMP WHERE id = ?")
	_, err := s.db.Exec(query, userID)
	return err
}
