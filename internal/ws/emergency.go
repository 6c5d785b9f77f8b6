package ws

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/pliu/huntlink/internal/models"
)

// handleEmergencyAlert raises an alert: persisted in the active state, then
// broadcast to the whole room including the raiser, carrying the raiser's
// identity and emergency-contact details.
func (h *Hub) handleEmergencyAlert(c *Client, data json.RawMessage) *EventError {
	var req emergencyAlertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return emergencyError("Missing required emergency data")
	}
	if req.UserID == 0 || req.GroupID == 0 || req.AlertType == "" || req.Latitude == nil || req.Longitude == nil {
		return emergencyError("Missing required emergency data")
	}

	member, err := h.store.IsMember(req.UserID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return emergencyError("Failed to send emergency alert")
	}
	if !member {
		return emergencyError("User is not a member of this group")
	}

	alert := models.EmergencyAlert{
		UserID:      req.UserID,
		GroupID:     req.GroupID,
		AlertType:   req.AlertType,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Description: req.Description,
	}
	if err := h.store.SaveAlert(&alert); err != nil {
		h.log.WithError(err).Error("failed to persist emergency alert")
		return emergencyError("Failed to send emergency alert")
	}

	raiser, err := h.store.GetUserByID(req.UserID)
	if err != nil {
		h.log.WithError(err).WithField("user", req.UserID).Error("failed to resolve raiser")
		return emergencyError("Failed to send emergency alert")
	}
	alert.Username = raiser.Username
	alert.FullName = raiser.FullName

	h.broadcast(GroupRoom(req.GroupID), EvEmergencyAlert, emergencyAlertEvent{
		EmergencyAlert: alert,
		PhoneNumber:    raiser.PhoneNumber,
		EmergencyContact: contactInfo{
			Name:  raiser.EmergencyContactName,
			Phone: raiser.EmergencyContactPhone,
		},
	}, nil)

	h.send(c, EvEmergencyAlertSent, emergencyAck{AlertID: alert.ID, CreatedAt: alert.CreatedAt})

	h.log.WithFields(logrus.Fields{
		"alert": alert.ID,
		"type":  alert.AlertType,
		"user":  raiser.Username,
		"group": req.GroupID,
	}).Warn("emergency alert raised")
	return nil
}

// handleResolveEmergency transitions an alert to resolved. The transition is
// first-resolver-wins: a second resolve is rejected so the room sees exactly
// one emergency_resolved broadcast. Resolver membership is intentionally not
// checked; anyone who can name the alert may stand it down.
func (h *Hub) handleResolveEmergency(c *Client, data json.RawMessage) *EventError {
	var req resolveEmergencyRequest
	if err := json.Unmarshal(data, &req); err != nil || req.AlertID == 0 || req.ResolvedBy == 0 {
		return emergencyError("Missing required emergency data")
	}

	resolved, err := h.store.ResolveAlert(req.AlertID, req.ResolvedBy)
	if err != nil {
		h.log.WithError(err).WithField("alert", req.AlertID).Error("failed to resolve emergency alert")
		return emergencyError("Failed to resolve emergency")
	}
	if !resolved {
		return emergencyError("Emergency alert is not active")
	}

	alert, err := h.store.GetAlert(req.AlertID)
	if err != nil {
		h.log.WithError(err).WithField("alert", req.AlertID).Error("failed to load resolved alert")
		return emergencyError("Failed to resolve emergency")
	}

	resolvedAt := alert.CreatedAt
	if alert.ResolvedAt != nil {
		resolvedAt = *alert.ResolvedAt
	}
	h.broadcast(GroupRoom(alert.GroupID), EvEmergencyResolved, emergencyResolvedEvent{
		AlertID:       alert.ID,
		ResolvedBy:    req.ResolvedBy,
		ResolvedAt:    resolvedAt,
		OriginalAlert: *alert,
	}, nil)

	h.log.WithFields(logrus.Fields{
		"alert":    alert.ID,
		"resolver": req.ResolvedBy,
		"group":    alert.GroupID,
	}).Info("emergency alert resolved")
	return nil
}
