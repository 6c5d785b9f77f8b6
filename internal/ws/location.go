package ws

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pliu/huntlink/internal/models"
)

// handleJoinGroup subscribes the connection to the group's room after the
// membership check, and attaches the user's session.
func (h *Hub) handleJoinGroup(c *Client, data json.RawMessage) *EventError {
	var req joinGroupRequest
	if err := json.Unmarshal(data, &req); err != nil || req.GroupID == 0 || req.UserID == 0 {
		return locationError("Missing required group data")
	}

	member, err := h.store.IsMember(req.UserID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return locationError("Failed to join group")
	}
	if !member {
		return locationError("User is not a member of this group")
	}

	h.joinRoom(GroupRoom(req.GroupID), c)

	if err := h.store.AttachSession(req.UserID, c.socketID); err != nil {
		h.log.WithError(err).WithField("user", req.UserID).Error("failed to attach session")
		return locationError("Failed to join group")
	}

	h.send(c, EvGroupJoined, groupAck{GroupID: req.GroupID, Message: "Joined group successfully"})
	h.log.WithFields(logrus.Fields{"user": req.UserID, "group": req.GroupID}).Info("user joined group")
	return nil
}

func (h *Hub) handleLeaveGroup(c *Client, data json.RawMessage) *EventError {
	var req joinGroupRequest
	if err := json.Unmarshal(data, &req); err != nil || req.GroupID == 0 || req.UserID == 0 {
		return locationError("Missing required group data")
	}

	member, err := h.store.IsMember(req.UserID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return locationError("Failed to leave group")
	}
	if !member {
		return locationError("User is not a member of this group")
	}

	h.leaveRoom(GroupRoom(req.GroupID), c)

	if err := h.store.DetachSession(req.UserID, c.socketID); err != nil {
		h.log.WithError(err).WithField("user", req.UserID).Error("failed to detach session")
		return locationError("Failed to leave group")
	}

	h.send(c, EvGroupLeft, groupAck{GroupID: req.GroupID, Message: "Left group"})
	h.log.WithFields(logrus.Fields{"user": req.UserID, "group": req.GroupID}).Info("user left group")
	return nil
}

// handleLocationUpdate runs the location pipeline: validate, authorize,
// persist, resolve identity, fan out. The room broadcast excludes the sender;
// the sender gets a separate acknowledgement. An emergency-flagged update
// additionally goes out on the higher-salience channel to the whole room.
func (h *Hub) handleLocationUpdate(c *Client, data json.RawMessage) *EventError {
	var req locationUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return locationError("Missing required location data")
	}
	if req.UserID == 0 || req.GroupID == 0 || req.Latitude == nil || req.Longitude == nil {
		return locationError("Missing required location data")
	}

	member, err := h.store.IsMember(req.UserID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return locationError("Failed to update location")
	}
	if !member {
		return locationError("User is not a member of this group")
	}

	loc := models.LocationUpdate{
		UserID:       req.UserID,
		GroupID:      req.GroupID,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Accuracy:     req.Accuracy,
		Altitude:     req.Altitude,
		Heading:      req.Heading,
		Speed:        req.Speed,
		BatteryLevel: req.BatteryLevel,
		IsEmergency:  req.IsEmergency,
		Notes:        req.Notes,
	}
	if err := h.store.SaveLocation(&loc); err != nil {
		h.log.WithError(err).Error("failed to persist location update")
		return locationError("Failed to update location")
	}

	user, err := h.store.GetUserByID(req.UserID)
	if err != nil {
		// The row is already persisted; the sender still gets an error.
		h.log.WithError(err).WithField("user", req.UserID).Error("failed to resolve sender")
		return locationError("Failed to update location")
	}

	room := GroupRoom(req.GroupID)
	h.broadcast(room, EvLocationUpdated, models.MemberLocation{
		LocationUpdate: loc,
		Username:       user.Username,
		FullName:       user.FullName,
	}, c)

	h.send(c, EvLocationSuccess, locationAck{
		ID:        loc.ID,
		Timestamp: loc.Timestamp,
		Message:   "Location updated successfully",
	})

	if loc.IsEmergency {
		h.broadcast(room, EvEmergencyLocation, emergencyLocationEvent{
			UserID:    loc.UserID,
			Username:  user.Username,
			FullName:  user.FullName,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Timestamp: loc.Timestamp,
			Notes:     loc.Notes,
		}, nil)
	}

	h.log.WithFields(logrus.Fields{
		"user":      user.Username,
		"group":     req.GroupID,
		"emergency": loc.IsEmergency,
	}).Info("location updated")
	return nil
}

// handleGetGroupLocations answers a latest-wins snapshot query: one row per
// member who has ever reported, delivered to the requester only.
func (h *Hub) handleGetGroupLocations(c *Client, data json.RawMessage) *EventError {
	var req joinGroupRequest
	if err := json.Unmarshal(data, &req); err != nil || req.GroupID == 0 || req.UserID == 0 {
		return locationError("Missing required group data")
	}

	member, err := h.store.IsMember(req.UserID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return locationError("Failed to get group locations")
	}
	if !member {
		return locationError("User is not a member of this group")
	}

	locations, err := h.store.GetGroupLocations(req.GroupID)
	if err != nil {
		h.log.WithError(err).WithField("group", req.GroupID).Error("failed to load group locations")
		return locationError("Failed to get group locations")
	}
	if locations == nil {
		locations = []models.MemberLocation{}
	}

	h.send(c, EvGroupLocations, groupLocationsEvent{
		GroupID:   req.GroupID,
		Locations: locations,
		Timestamp: time.Now().UTC(),
	})
	return nil
}
