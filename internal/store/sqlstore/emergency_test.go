package sqlstore

import (
	"testing"

	"github.com/pliu/huntlink/internal/models"
)

func TestAlertLifecycle(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	raiser := createTestUser(t, "raiser")
	resolver := createTestUser(t, "resolver")
	groupID := createTestGroup(t, "Camp", raiser, resolver)

	alert := &models.EmergencyAlert{
		UserID:      raiser.ID,
		GroupID:     groupID,
		AlertType:   "injured",
		Latitude:    45.0,
		Longitude:   -122.0,
		Description: "twisted ankle",
	}
	if err := testStore.SaveAlert(alert); err != nil {
		t.Fatalf("SaveAlert failed: %v", err)
	}
	if alert.ID == 0 {
		t.Error("Expected generated alert ID")
	}
	if alert.Status != models.AlertActive {
		t.Errorf("Expected status '%s', got '%s'", models.AlertActive, alert.Status)
	}

	resolved, err := testStore.ResolveAlert(alert.ID, resolver.ID)
	if err != nil {
		t.Fatalf("ResolveAlert failed: %v", err)
	}
	if !resolved {
		t.Fatal("Expected first resolve to succeed")
	}

	got, err := testStore.GetAlert(alert.ID)
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got.Status != models.AlertResolved {
		t.Errorf("Expected status '%s', got '%s'", models.AlertResolved, got.Status)
	}
	if got.ResolvedBy == nil || *got.ResolvedBy != resolver.ID {
		t.Error("Expected resolved_by to record the resolver")
	}
	if got.ResolvedAt == nil {
		t.Error("Expected resolved_at to be set")
	}
	// The original alert facts survive resolution unchanged.
	if got.AlertType != "injured" || got.Latitude != 45.0 || got.Description != "twisted ankle" {
		t.Error("Expected original alert facts to be unchanged")
	}
}

func TestResolveAlertFirstResolverWins(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	raiser := createTestUser(t, "raiser")
	first := createTestUser(t, "first")
	second := createTestUser(t, "second")
	groupID := createTestGroup(t, "Camp", raiser)

	alert := &models.EmergencyAlert{UserID: raiser.ID, GroupID: groupID, AlertType: "lost", Latitude: 1, Longitude: 1}
	if err := testStore.SaveAlert(alert); err != nil {
		t.Fatalf("SaveAlert failed: %v", err)
	}

	if ok, _ := testStore.ResolveAlert(alert.ID, first.ID); !ok {
		t.Fatal("Expected first resolve to succeed")
	}
	if ok, _ := testStore.ResolveAlert(alert.ID, second.ID); ok {
		t.Error("Expected second resolve to be rejected")
	}

	got, _ := testStore.GetAlert(alert.ID)
	if got.ResolvedBy == nil || *got.ResolvedBy != first.ID {
		t.Error("Expected first resolver to be kept")
	}
}

func TestResolveAlertUnknownID(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	user := createTestUser(t, "anyone")
	if ok, err := testStore.ResolveAlert(9999, user.ID); err != nil || ok {
		t.Errorf("Expected clean rejection for unknown alert, got ok=%v err=%v", ok, err)
	}
}
