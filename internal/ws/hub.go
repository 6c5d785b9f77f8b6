package ws

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pliu/huntlink/internal/metrics"
	"github.com/pliu/huntlink/internal/store"
)

// RoomID is the key space of the room router. Rooms are keyed by group; the
// constructor keeps callers from assembling ad-hoc string keys.
type RoomID struct {
	group int
}

func GroupRoom(groupID int) RoomID {
	return RoomID{group: groupID}
}

func (r RoomID) String() string {
	return "group:" + strconv.Itoa(r.group)
}

// pingPersistInterval is how often live-session last_ping values are flushed
// to the store.
const pingPersistInterval = 30 * time.Second

type inbound struct {
	client *Client
	event  Event
}

// Hub owns the room router and the live side of the session registry. All
// inbound events are processed sequentially by the Run goroutine; each event
// persists before it broadcasts, so broadcasts to a room observe the store
// in event order.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Connections subscribed per room.
	rooms map[RoomID]map[*Client]bool

	// Inbound events from the clients.
	events chan inbound

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	store store.Store
	log   *logrus.Logger
}

func NewHub(store store.Store, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[RoomID]map[*Client]bool),
		events:     make(chan inbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		store:      store,
		log:        log,
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(pingPersistInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.ActiveConnections.Inc()
			h.log.WithFields(logrus.Fields{
				"socket": client.socketID,
				"user":   client.userID,
			}).Info("client connected")
		case client := <-h.unregister:
			h.drop(client)
		case in := <-h.events:
			h.dispatch(in.client, in.event)
		case <-ticker.C:
			h.persistPings()
		}
	}
}

// drop removes a client from the hub, all rooms, and the session registry.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for room, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(client.send)
	metrics.ActiveConnections.Dec()

	if err := h.store.DetachSession(client.userID, client.socketID); err != nil {
		h.log.WithError(err).WithField("user", client.userID).Error("failed to detach session")
	}
	h.log.WithFields(logrus.Fields{
		"socket": client.socketID,
		"user":   client.userID,
	}).Info("client disconnected")
}

func (h *Hub) dispatch(c *Client, ev Event) {
	metrics.EventsTotal.WithLabelValues(ev.Type).Inc()

	var ee *EventError
	switch ev.Type {
	case EvJoinGroup:
		ee = h.handleJoinGroup(c, ev.Data)
	case EvLeaveGroup:
		ee = h.handleLeaveGroup(c, ev.Data)
	case EvLocationUpdate:
		ee = h.handleLocationUpdate(c, ev.Data)
	case EvGetGroupLocations:
		ee = h.handleGetGroupLocations(c, ev.Data)
	case EvSendMessage:
		ee = h.handleSendMessage(c, ev.Data)
	case EvMarkMessageRead:
		ee = h.handleMarkMessageRead(c, ev.Data)
	case EvSendEmergency:
		ee = h.handleEmergencyAlert(c, ev.Data)
	case EvResolveEmergency:
		ee = h.handleResolveEmergency(c, ev.Data)
	default:
		h.log.WithField("type", ev.Type).Warn("unknown event type")
		return
	}
	if ee != nil {
		h.send(c, ee.Event, ee)
	}
}

// joinRoom subscribes a client to a room. Re-joining is a no-op.
func (h *Hub) joinRoom(room RoomID, c *Client) {
	members := h.rooms[room]
	if members == nil {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
}

// leaveRoom unsubscribes a client; leaving an unjoined room is a no-op.
func (h *Hub) leaveRoom(room RoomID, c *Client) {
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// send delivers one event to one client. Delivery is fire-and-forget: a
// client whose send buffer is full is dropped, as the write pump is no
// longer keeping up.
func (h *Hub) send(c *Client, eventType string, payload interface{}) {
	if !h.clients[c] {
		// Already dropped earlier in this event; its channel is closed.
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to marshal event payload")
		return
	}
	frame, _ := json.Marshal(Event{Type: eventType, Data: data})

	select {
	case c.send <- frame:
	default:
		h.drop(c)
	}
}

// broadcast fans an event out to every connection subscribed to the room,
// optionally excluding the sender. No acknowledgement, no retry.
func (h *Hub) broadcast(room RoomID, eventType string, payload interface{}, exclude *Client) {
	members := h.rooms[room]
	if len(members) == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to marshal broadcast payload")
		return
	}
	frame, _ := json.Marshal(Event{Type: eventType, Data: data})

	for c := range members {
		if c == exclude {
			continue
		}
		select {
		case c.send <- frame:
			metrics.BroadcastsTotal.Inc()
		default:
			h.drop(c)
		}
	}
}

// persistPings flushes last_ping for every live connection so the stale
// session sweep does not demote healthy sessions.
func (h *Hub) persistPings() {
	if len(h.clients) == 0 {
		return
	}
	socketIDs := make([]string, 0, len(h.clients))
	for c := range h.clients {
		socketIDs = append(socketIDs, c.socketID)
	}
	if err := h.store.TouchSessions(socketIDs); err != nil {
		h.log.WithError(err).Error("failed to refresh session pings")
	}
}
