package services

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/testhelpers"
)

func testConfig() config.AppConfig {
	config.SetForTest(config.AppConfig{JWTSecret: "test-secret"})
	return config.Get()
}

func newTestRewards(t *testing.T) (*Rewards, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	return NewRewards(db, testConfig(), nil), db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", userSeq),
		Name:     fmt.Sprintf("User %d", userSeq),
		Username: fmt.Sprintf("Test Walker %d", userSeq),
		Goal:     1000,
		Level:    1,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}
