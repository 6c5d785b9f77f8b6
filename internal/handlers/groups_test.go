package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"

	"github.com/pliu/huntlink/internal/middleware"
	"github.com/pliu/huntlink/internal/models"
	"github.com/pliu/huntlink/internal/store/sqlstore"
)

func newGroupHandler(t *testing.T) (*GroupHandler, *sqlstore.SQLStore) {
	t.Helper()
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return &GroupHandler{Store: store}, store
}

func seedHandlerUser(t *testing.T, store *sqlstore.SQLStore, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash", FullName: username}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// asUser simulates the auth middleware having validated a bearer token.
func asUser(req *http.Request, userID int) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestCreateGroup(t *testing.T) {
	handler, store := newGroupHandler(t)
	user := seedHandlerUser(t, store, "creator")

	body, _ := json.Marshal(CreateGroupRequest{Name: "Elk Camp"})
	req, _ := http.NewRequest("POST", "/api/groups", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler.CreateGroup(rr, asUser(req, user.ID))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body)
	}

	var resp map[string]int64
	json.NewDecoder(rr.Body).Decode(&resp)
	isMember, _ := store.IsMember(user.ID, int(resp["id"]))
	if !isMember {
		t.Error("Expected creator to be a member of the new group")
	}
}

func TestAddMemberRequiresMembership(t *testing.T) {
	handler, store := newGroupHandler(t)
	owner := seedHandlerUser(t, store, "owner")
	outsider := seedHandlerUser(t, store, "outsider")
	invitee := seedHandlerUser(t, store, "invitee")

	groupID, _ := store.CreateGroup("Camp", owner.ID)
	store.AddMember(int(groupID), owner.ID)

	body, _ := json.Marshal(AddMemberRequest{Username: invitee.Username})
	req, _ := http.NewRequest("POST", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/members", bytes.NewBuffer(body))
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr := httptest.NewRecorder()
	handler.AddMember(rr, asUser(req, outsider.ID))

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status %d for non-member, got %d", http.StatusForbidden, rr.Code)
	}

	body, _ = json.Marshal(AddMemberRequest{Username: invitee.Username})
	req, _ = http.NewRequest("POST", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/members", bytes.NewBuffer(body))
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr = httptest.NewRecorder()
	handler.AddMember(rr, asUser(req, owner.ID))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body)
	}
	isMember, _ := store.IsMember(invitee.ID, int(groupID))
	if !isMember {
		t.Error("Expected invitee to be a member")
	}
}

func TestGetGroupMessagesGated(t *testing.T) {
	handler, store := newGroupHandler(t)
	member := seedHandlerUser(t, store, "member")
	outsider := seedHandlerUser(t, store, "outsider")

	groupID, _ := store.CreateGroup("Camp", member.ID)
	store.AddMember(int(groupID), member.ID)
	msg := &models.Message{GroupID: int(groupID), SenderID: member.ID, MessageType: "text", Content: "hi", Priority: "normal"}
	store.SaveMessage(msg)

	req, _ := http.NewRequest("GET", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/messages", nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr := httptest.NewRecorder()
	handler.GetGroupMessages(rr, asUser(req, outsider.ID))

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status %d for non-member, got %d", http.StatusForbidden, rr.Code)
	}

	req, _ = http.NewRequest("GET", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/messages", nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr = httptest.NewRecorder()
	handler.GetGroupMessages(rr, asUser(req, member.ID))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var messages []models.Message
	json.NewDecoder(rr.Body).Decode(&messages)
	if len(messages) != 1 {
		t.Errorf("Expected 1 message, got %d", len(messages))
	}
}

func TestLeaveGroup(t *testing.T) {
	handler, store := newGroupHandler(t)
	member := seedHandlerUser(t, store, "member")
	outsider := seedHandlerUser(t, store, "outsider")

	groupID, _ := store.CreateGroup("Camp", member.ID)
	store.AddMember(int(groupID), member.ID)

	req, _ := http.NewRequest("DELETE", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/members", nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr := httptest.NewRecorder()
	handler.LeaveGroup(rr, asUser(req, outsider.ID))

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status %d for non-member, got %d", http.StatusForbidden, rr.Code)
	}

	req, _ = http.NewRequest("DELETE", "/api/groups/"+strconv.FormatInt(groupID, 10)+"/members", nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatInt(groupID, 10)})
	rr = httptest.NewRecorder()
	handler.LeaveGroup(rr, asUser(req, member.ID))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body)
	}
	isMember, _ := store.IsMember(member.ID, int(groupID))
	if isMember {
		t.Error("Expected member to be removed from the group")
	}
}
