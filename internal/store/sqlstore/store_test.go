package sqlstore

import (
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pliu/huntlink/internal/models"
)

var testStore *SQLStore

func SetupTestDB(t *testing.T) {
	var err error
	testStore, err = New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
}

func TeardownTestDB() {
	testStore.db.Close()
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		FullName: "Test " + username,
	}
	if err := testStore.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestGroup(t *testing.T, name string, members ...*models.User) int {
	t.Helper()
	ownerID := 0
	if len(members) > 0 {
		ownerID = members[0].ID
	}
	groupID, err := testStore.CreateGroup(name, ownerID)
	if err != nil {
		t.Fatalf("Failed to create group %s: %v", name, err)
	}
	for _, m := range members {
		if err := testStore.AddMember(int(groupID), m.ID); err != nil {
			t.Fatalf("Failed to add member %d: %v", m.ID, err)
		}
	}
	return int(groupID)
}
