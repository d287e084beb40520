package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"users", "identities", "groups", "group_memberships", "water_logs", "login_codes"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestGroupGetsUUIDOnCreate(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	group := Group{Name: "Team A", Code: "A1B2C3"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	if group.ID == "" {
		t.Error("Expected group ID to be assigned on create")
	}
}

func TestGroupCodeUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	if err := db.Create(&Group{Name: "First", Code: "SAME01"}).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	err := db.Create(&Group{Name: "Second", Code: "SAME01"}).Error
	if err == nil {
		t.Error("Expected error when creating group with duplicate code")
	}
}

func TestMembershipCompositeUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{ID: "user-1", Name: "Ana"}
	db.Create(&user)
	group := Group{Name: "Team A", Code: "A1B2C3"}
	db.Create(&group)

	first := GroupMembership{UserID: user.ID, GroupID: group.ID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}

	// The composite unique index, not application code, forbids the
	// duplicate row.
	second := GroupMembership{UserID: user.ID, GroupID: group.ID}
	if err := db.Create(&second).Error; err == nil {
		t.Error("Expected error when creating duplicate membership")
	}

	// Same user in a different group is fine
	other := Group{Name: "Team B", Code: "B2C3D4"}
	db.Create(&other)
	third := GroupMembership{UserID: user.ID, GroupID: other.ID}
	if err := db.Create(&third).Error; err != nil {
		t.Errorf("Expected membership in a second group to succeed: %v", err)
	}
}

func TestWaterLogAppend(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	log := WaterLog{GroupID: "group-1", UserID: "user-1", ML: 500}
	if err := db.Create(&log).Error; err != nil {
		t.Fatalf("Failed to create water log: %v", err)
	}
	if log.ID == 0 {
		t.Error("Expected water log ID to be set after create")
	}
	if log.CreatedAt.IsZero() {
		t.Error("Expected water log to be timestamped on create")
	}
}
