package sqlstore

import (
	"testing"

	"github.com/pliu/huntlink/internal/models"
)

func TestCreateUser(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	user := &models.User{
		Username:              "hunter1",
		Email:                 "hunter1@example.com",
		Password:              "hash",
		FullName:              "Hunter One",
		PhoneNumber:           "555-0100",
		EmergencyContactName:  "Jamie One",
		EmergencyContactPhone: "555-0101",
	}
	if err := testStore.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected non-zero user ID")
	}

	got, err := testStore.GetUserByEmail("hunter1@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.Username != "hunter1" {
		t.Errorf("Expected username 'hunter1', got '%s'", got.Username)
	}
	if got.EmergencyContactPhone != "555-0101" {
		t.Errorf("Expected emergency contact phone '555-0101', got '%s'", got.EmergencyContactPhone)
	}
	if !got.IsActive {
		t.Error("Expected new user to be active")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	createTestUser(t, "dupe")

	other := &models.User{Username: "dupe2", Email: "dupe@example.com", Password: "hash", FullName: "Dupe Two"}
	if err := testStore.CreateUser(other); err == nil {
		t.Error("Expected error for duplicate email")
	}
}

func TestTouchLastSeen(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	user := createTestUser(t, "seen")
	before, _ := testStore.GetUserByID(user.ID)

	if err := testStore.TouchLastSeen(user.ID); err != nil {
		t.Fatalf("TouchLastSeen failed: %v", err)
	}

	after, _ := testStore.GetUserByID(user.ID)
	if after.LastSeen.Before(before.LastSeen) {
		t.Error("Expected last_seen to move forward")
	}
}
