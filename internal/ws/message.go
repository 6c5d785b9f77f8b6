package ws

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/pliu/huntlink/internal/models"
)

// handleSendMessage runs the messaging pipeline. Unlike location updates the
// room broadcast includes the sender: every participant observes the same
// authoritative new_message event, and the sender additionally gets a direct
// acknowledgement with the generated id and timestamp.
func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) *EventError {
	var req sendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return messageError("Missing required message data")
	}
	if req.GroupID == 0 || req.SenderID == 0 || req.Content == "" {
		return messageError("Missing required message data")
	}

	member, err := h.store.IsMember(req.SenderID, req.GroupID)
	if err != nil {
		h.log.WithError(err).Error("membership check failed")
		return messageError("Failed to send message")
	}
	if !member {
		return messageError("User is not a member of this group")
	}

	msg := models.Message{
		GroupID:     req.GroupID,
		SenderID:    req.SenderID,
		MessageType: req.MessageType,
		Content:     req.Content,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Priority:    req.Priority,
	}
	if msg.MessageType == "" {
		msg.MessageType = "text"
	}
	if msg.Priority == "" {
		msg.Priority = "normal"
	}
	if err := h.store.SaveMessage(&msg); err != nil {
		h.log.WithError(err).Error("failed to persist message")
		return messageError("Failed to send message")
	}

	sender, err := h.store.GetUserByID(req.SenderID)
	if err != nil {
		h.log.WithError(err).WithField("user", req.SenderID).Error("failed to resolve sender")
		return messageError("Failed to send message")
	}
	msg.Username = sender.Username
	msg.FullName = sender.FullName

	h.broadcast(GroupRoom(req.GroupID), EvNewMessage, msg, nil)
	h.send(c, EvMessageSent, messageAck{MessageID: msg.ID, SentAt: msg.SentAt})

	h.log.WithFields(logrus.Fields{
		"group":    req.GroupID,
		"sender":   sender.Username,
		"priority": msg.Priority,
	}).Info("message sent")
	return nil
}

// handleMarkMessageRead records a read receipt. Re-marking is a no-op and
// failures are silent: the reader only ever sees a confirmation.
func (h *Hub) handleMarkMessageRead(c *Client, data json.RawMessage) *EventError {
	var req markMessageReadRequest
	if err := json.Unmarshal(data, &req); err != nil || req.MessageID == 0 || req.UserID == 0 {
		return nil
	}

	if err := h.store.MarkMessageRead(req.MessageID, req.UserID); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"message": req.MessageID,
			"reader":  req.UserID,
		}).Error("failed to mark message read")
		return nil
	}

	h.send(c, EvMessageReadConfirmed, messageReadAck{MessageID: req.MessageID})
	return nil
}
