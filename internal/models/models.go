package models

import "time"

type User struct {
	ID                    int       `json:"id"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	Password              string    `json:"-"`
	FullName              string    `json:"fullName"`
	PhoneNumber           string    `json:"phoneNumber,omitempty"`
	EmergencyContactName  string    `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string    `json:"emergencyContactPhone,omitempty"`
	IsActive              bool      `json:"isActive"`
	LastSeen              time.Time `json:"lastSeen"`
}

type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int       `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationUpdate is an append-only position report. The stored timestamp is
// assigned by the database, not the client.
type LocationUpdate struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	GroupID      int       `json:"groupId"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	Altitude     *float64  `json:"altitude,omitempty"`
	Heading      *float64  `json:"heading,omitempty"`
	Speed        *float64  `json:"speed,omitempty"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	IsEmergency  bool      `json:"isEmergency"`
	Notes        string    `json:"notes,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemberLocation is a latest-wins snapshot row: the most recent position of
// one group member, joined with their display identity.
type MemberLocation struct {
	LocationUpdate
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type Message struct {
	ID          int       `json:"id"`
	GroupID     int       `json:"groupId"`
	SenderID    int       `json:"senderId"`
	Username    string    `json:"senderUsername,omitempty"`
	FullName    string    `json:"senderFullName,omitempty"`
	MessageType string    `json:"messageType"`
	Content     string    `json:"content"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Priority    string    `json:"priority"`
	SentAt      time.Time `json:"sentAt"`
}

// Alert lifecycle states. An alert is created active and resolved exactly
// once; there are no further states.
const (
	AlertActive   = "active"
	AlertResolved = "resolved"
)

type EmergencyAlert struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	GroupID     int        `json:"groupId"`
	AlertType   string     `json:"alertType"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ResolvedBy  *int       `json:"resolvedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	Username    string     `json:"username,omitempty"`
	FullName    string     `json:"fullName,omitempty"`
}

// Session maps a user to their current live connection. At most one row per
// user; a new connection supersedes the old one.
type Session struct {
	UserID   int       `json:"userId"`
	SocketID string    `json:"socketId"`
	IsActive bool      `json:"isActive"`
	LastPing time.Time `json:"lastPing"`
}
