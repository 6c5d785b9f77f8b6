package ws

import (
	"encoding/json"
	"testing"

	"github.com/pliu/huntlink/internal/models"
)

func TestLocationUpdateFanout(t *testing.T) {
	hub, store := newTestHub(t)
	u1 := seedUser(t, store, "u1")
	u2 := seedUser(t, store, "u2")
	u3 := seedUser(t, store, "u3")
	g1 := seedGroup(t, store, "G1", u1, u2)
	g2 := seedGroup(t, store, "G2", u3)

	c1 := connect(t, hub, u1.ID)
	c2 := connect(t, hub, u2.ID)
	c3 := connect(t, hub, u3.ID)
	joinGroup(t, hub, c1, g1)
	joinGroup(t, hub, c2, g1)
	joinGroup(t, hub, c3, g2)

	lat, lon := 45.0, -122.0
	battery := 80.0
	emit(t, hub, c1, EvLocationUpdate, locationUpdateRequest{
		UserID: u1.ID, GroupID: g1, Latitude: &lat, Longitude: &lon,
		BatteryLevel: &battery, Notes: "at the creek",
	})

	// Sender gets the acknowledgement, not the room broadcast.
	var ack locationAck
	json.Unmarshal(recvEvent(t, c1, EvLocationSuccess), &ack)
	if ack.ID == 0 || ack.Timestamp.IsZero() {
		t.Errorf("Expected id and server timestamp in ack, got %+v", ack)
	}
	expectSilence(t, c1)

	// The other subscriber gets the full payload.
	var ml models.MemberLocation
	json.Unmarshal(recvEvent(t, c2, EvLocationUpdated), &ml)
	if ml.UserID != u1.ID || ml.Latitude != 45.0 || ml.Longitude != -122.0 {
		t.Errorf("Unexpected broadcast payload %+v", ml)
	}
	if ml.Username != "u1" {
		t.Errorf("Expected display name joined in, got '%s'", ml.Username)
	}
	if ml.Notes != "at the creek" {
		t.Errorf("Expected notes carried through, got '%s'", ml.Notes)
	}

	// Non-subscribers see nothing.
	expectSilence(t, c3)

	// Exactly one row persisted, with the acknowledged id.
	locations, err := store.GetGroupLocations(g1)
	if err != nil {
		t.Fatalf("GetGroupLocations failed: %v", err)
	}
	if len(locations) != 1 || locations[0].ID != ack.ID {
		t.Errorf("Expected single persisted row %d, got %+v", ack.ID, locations)
	}
}

func TestLocationUpdateNonMember(t *testing.T) {
	hub, store := newTestHub(t)
	member := seedUser(t, store, "member")
	outsider := seedUser(t, store, "outsider")
	groupID := seedGroup(t, store, "G1", member)

	oc := connect(t, hub, outsider.ID)

	lat, lon := 1.0, 1.0
	emit(t, hub, oc, EvLocationUpdate, locationUpdateRequest{
		UserID: outsider.ID, GroupID: groupID, Latitude: &lat, Longitude: &lon,
	})

	var ee EventError
	json.Unmarshal(recvEvent(t, oc, EvLocationError), &ee)
	if ee.Message != "User is not a member of this group" {
		t.Errorf("Unexpected error message '%s'", ee.Message)
	}

	locations, _ := store.GetGroupLocations(groupID)
	if len(locations) != 0 {
		t.Errorf("Expected no rows persisted, got %d", len(locations))
	}
}

func TestLocationUpdateValidation(t *testing.T) {
	hub, store := newTestHub(t)
	user := seedUser(t, store, "partial")
	groupID := seedGroup(t, store, "G1", user)

	c := connect(t, hub, user.ID)
	joinGroup(t, hub, c, groupID)

	lat := 45.0
	emit(t, hub, c, EvLocationUpdate, locationUpdateRequest{
		UserID: user.ID, GroupID: groupID, Latitude: &lat, // longitude missing
	})

	var ee EventError
	json.Unmarshal(recvEvent(t, c, EvLocationError), &ee)
	if ee.Message != "Missing required location data" {
		t.Errorf("Unexpected error message '%s'", ee.Message)
	}

	locations, _ := store.GetGroupLocations(groupID)
	if len(locations) != 0 {
		t.Errorf("Expected no rows persisted, got %d", len(locations))
	}
}

func TestEmergencyLocationIncludesSender(t *testing.T) {
	hub, store := newTestHub(t)
	u1 := seedUser(t, store, "u1")
	u2 := seedUser(t, store, "u2")
	groupID := seedGroup(t, store, "G1", u1, u2)

	c1 := connect(t, hub, u1.ID)
	c2 := connect(t, hub, u2.ID)
	joinGroup(t, hub, c1, groupID)
	joinGroup(t, hub, c2, groupID)

	lat, lon := 45.0, -122.0
	emit(t, hub, c1, EvLocationUpdate, locationUpdateRequest{
		UserID: u1.ID, GroupID: groupID, Latitude: &lat, Longitude: &lon,
		IsEmergency: true, Notes: "need help",
	})

	// The ordinary broadcast still excludes the sender; the emergency
	// channel reaches the entire room including the sender.
	recvEvent(t, c1, EvLocationSuccess)
	var ev emergencyLocationEvent
	json.Unmarshal(recvEvent(t, c1, EvEmergencyLocation), &ev)
	if ev.UserID != u1.ID || ev.Notes != "need help" {
		t.Errorf("Unexpected emergency location payload %+v", ev)
	}

	recvEvent(t, c2, EvLocationUpdated)
	recvEvent(t, c2, EvEmergencyLocation)
}

func TestGetGroupLocationsSnapshot(t *testing.T) {
	hub, store := newTestHub(t)
	u1 := seedUser(t, store, "u1")
	u2 := seedUser(t, store, "u2")
	groupID := seedGroup(t, store, "G1", u1, u2)

	c1 := connect(t, hub, u1.ID)
	c2 := connect(t, hub, u2.ID)
	joinGroup(t, hub, c1, groupID)
	joinGroup(t, hub, c2, groupID)

	coords := [][2]float64{{45.0, -122.0}, {45.5, -122.5}}
	for _, xy := range coords {
		lat, lon := xy[0], xy[1]
		emit(t, hub, c1, EvLocationUpdate, locationUpdateRequest{
			UserID: u1.ID, GroupID: groupID, Latitude: &lat, Longitude: &lon,
		})
		recvEvent(t, c1, EvLocationSuccess)
		recvEvent(t, c2, EvLocationUpdated)
	}
	lat, lon := 44.0, -121.0
	emit(t, hub, c2, EvLocationUpdate, locationUpdateRequest{
		UserID: u2.ID, GroupID: groupID, Latitude: &lat, Longitude: &lon,
	})
	recvEvent(t, c2, EvLocationSuccess)
	recvEvent(t, c1, EvLocationUpdated)

	emit(t, hub, c2, EvGetGroupLocations, joinGroupRequest{GroupID: groupID, UserID: u2.ID})
	var snap groupLocationsEvent
	json.Unmarshal(recvEvent(t, c2, EvGroupLocations), &snap)

	// One row per member, latest wins. Delivered to the requester only.
	if len(snap.Locations) != 2 {
		t.Fatalf("Expected 2 snapshot rows, got %d", len(snap.Locations))
	}
	for _, ml := range snap.Locations {
		if ml.UserID == u1.ID && ml.Latitude != 45.5 {
			t.Errorf("Expected latest latitude 45.5 for u1, got %v", ml.Latitude)
		}
	}
	expectSilence(t, c1)
}
