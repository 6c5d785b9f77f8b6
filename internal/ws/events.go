package ws

import (
	"encoding/json"
	"time"

	"github.com/pliu/huntlink/internal/models"
)

// Event is the wire frame for both directions: a type tag and a payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound event types.
const (
	EvJoinGroup         = "join_group"
	EvLeaveGroup        = "leave_group"
	EvLocationUpdate    = "location_update"
	EvGetGroupLocations = "get_group_locations"
	EvSendMessage       = "send_message"
	EvMarkMessageRead   = "mark_message_read"
	EvSendEmergency     = "send_emergency_alert"
	EvResolveEmergency  = "resolve_emergency"
)

// Outbound event types.
const (
	EvGroupJoined          = "group_joined"
	EvGroupLeft            = "group_left"
	EvLocationUpdated      = "location_updated"
	EvLocationSuccess      = "location_update_success"
	EvEmergencyLocation    = "emergency_location"
	EvGroupLocations       = "group_locations"
	EvNewMessage           = "new_message"
	EvMessageSent          = "message_sent"
	EvMessageReadConfirmed = "message_read_confirmed"
	EvEmergencyAlert       = "emergency_alert"
	EvEmergencyAlertSent   = "emergency_alert_sent"
	EvEmergencyResolved    = "emergency_resolved"

	EvLocationError  = "location_error"
	EvMessageError   = "message_error"
	EvEmergencyError = "emergency_error"
)

// EventError is the failure outcome of a pipeline: which error event to emit
// and the client-safe message. Full error detail is logged server-side only.
type EventError struct {
	Event   string `json:"-"`
	Message string `json:"message"`
}

func locationError(msg string) *EventError {
	return &EventError{Event: EvLocationError, Message: msg}
}

func messageError(msg string) *EventError {
	return &EventError{Event: EvMessageError, Message: msg}
}

func emergencyError(msg string) *EventError {
	return &EventError{Event: EvEmergencyError, Message: msg}
}

// Inbound payloads. Required coordinates are pointers so that a missing field
// is distinguishable from zero.

type joinGroupRequest struct {
	GroupID int `json:"groupId"`
	UserID  int `json:"userId"`
}

type locationUpdateRequest struct {
	UserID       int      `json:"userId"`
	GroupID      int      `json:"groupId"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Accuracy     *float64 `json:"accuracy"`
	Altitude     *float64 `json:"altitude"`
	Heading      *float64 `json:"heading"`
	Speed        *float64 `json:"speed"`
	BatteryLevel *float64 `json:"batteryLevel"`
	IsEmergency  bool     `json:"isEmergency"`
	Notes        string   `json:"notes"`
}

type sendMessageRequest struct {
	GroupID     int      `json:"groupId"`
	SenderID    int      `json:"senderId"`
	Content     string   `json:"content"`
	MessageType string   `json:"messageType"`
	Priority    string   `json:"priority"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type markMessageReadRequest struct {
	MessageID int `json:"messageId"`
	UserID    int `json:"userId"`
}

type emergencyAlertRequest struct {
	UserID      int      `json:"userId"`
	GroupID     int      `json:"groupId"`
	AlertType   string   `json:"alertType"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description string   `json:"description"`
}

type resolveEmergencyRequest struct {
	AlertID    int `json:"alertId"`
	ResolvedBy int `json:"resolvedBy"`
}

// Outbound payloads.

type groupAck struct {
	GroupID int    `json:"groupId"`
	Message string `json:"message"`
}

type locationAck struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type emergencyLocationEvent struct {
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

type groupLocationsEvent struct {
	GroupID   int                     `json:"groupId"`
	Locations []models.MemberLocation `json:"locations"`
	Timestamp time.Time               `json:"timestamp"`
}

type messageAck struct {
	MessageID int       `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}

type messageReadAck struct {
	MessageID int `json:"messageId"`
}

type contactInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// emergencyAlertEvent is the high-salience room broadcast for a raised alert:
// the alert itself plus the raiser's contact details.
type emergencyAlertEvent struct {
	models.EmergencyAlert
	PhoneNumber      string      `json:"phoneNumber,omitempty"`
	EmergencyContact contactInfo `json:"emergencyContact"`
}

type emergencyAck struct {
	AlertID   int       `json:"alertId"`
	CreatedAt time.Time `json:"createdAt"`
}

type emergencyResolvedEvent struct {
	AlertID       int                   `json:"alertId"`
	ResolvedBy    int                   `json:"resolvedBy"`
	ResolvedAt    time.Time             `json:"resolvedAt"`
	OriginalAlert models.EmergencyAlert `json:"originalAlert"`
}
