package store

import (
	"time"

	"github.com/pliu/huntlink/internal/models"
)

// Store is the persistence gateway. Implementations hold the only
// authoritative copies of all entities; callers keep per-event working data.
type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	TouchLastSeen(userID int) error

	// Group operations
	CreateGroup(name string, ownerID int) (int64, error)
	AddMember(groupID, userID int) error
	RemoveMember(groupID, userID int) error
	IsMember(userID, groupID int) (bool, error)
	GetUserGroups(userID int) ([]models.Group, error)
	GetGroupMembers(groupID int) ([]models.User, error)

	// Location operations
	SaveLocation(loc *models.LocationUpdate) error
	GetGroupLocations(groupID int) ([]models.MemberLocation, error)

	// Message operations
	SaveMessage(msg *models.Message) error
	MarkMessageRead(messageID, userID int) error
	GetGroupMessages(groupID, limit int) ([]models.Message, error)

	// Emergency alert operations
	SaveAlert(alert *models.EmergencyAlert) error
	ResolveAlert(alertID, resolvedBy int) (bool, error)
	GetAlert(alertID int) (*models.EmergencyAlert, error)

	// Session operations
	AttachSession(userID int, socketID string) error
	DetachSession(userID int, socketID string) error
	TouchSessions(socketIDs []string) error
	SweepStaleSessions(olderThan time.Duration) (int64, error)
	GetSession(userID int) (*models.Session, error)
}
