package services

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
)

func assertEnrollmentInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()
	var users, missions, userMissions int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Mission{}).Count(&missions)
	db.Model(&models.UserMission{}).Count(&userMissions)
	if userMissions != users*missions {
		t.Fatalf("enrollment invariant broken: %d user-missions for %d users x %d missions",
			userMissions, users, missions)
	}
}

func TestEnrollment_MissionsThenUsers(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()

	for i := 0; i < 2; i++ {
		if _, err := missions.CreateMission(db, fmt.Sprintf("walk-%d", i), "", (i+1)*10000, 50); err != nil {
			t.Fatalf("CreateMission returned error: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		user := seedUser(t, db)
		if err := missions.EnrollUser(db, user.ID); err != nil {
			t.Fatalf("EnrollUser returned error: %v", err)
		}
	}

	assertEnrollmentInvariant(t, db)
}

func TestEnrollment_UsersThenMissions(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()

	for i := 0; i < 3; i++ {
		user := seedUser(t, db)
		if err := missions.EnrollUser(db, user.ID); err != nil {
			t.Fatalf("EnrollUser returned error: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := missions.CreateMission(db, fmt.Sprintf("trek-%d", i), "", (i+1)*10000, 50); err != nil {
			t.Fatalf("CreateMission returned error: %v", err)
		}
	}

	assertEnrollmentInvariant(t, db)
}

func TestEnrollment_Rerunning(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()

	if _, err := missions.CreateMission(db, "first steps", "", 1000, 10); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}
	user := seedUser(t, db)
	if err := missions.EnrollUser(db, user.ID); err != nil {
		t.Fatalf("EnrollUser returned error: %v", err)
	}
	if err := missions.EnrollUser(db, user.ID); err != nil {
		t.Fatalf("second EnrollUser returned error: %v", err)
	}

	assertEnrollmentInvariant(t, db)
}

func TestCreateMission_Validation(t *testing.T) {
	rewards, db := newTestRewards(t)

	if _, err := rewards.Missions().CreateMission(db, "", "", 1000, 10); err != ErrValidation {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := rewards.Missions().CreateMission(db, "neg", "", -1, 10); err != ErrValidation {
		t.Fatalf("expected ErrValidation for negative requirement, got %v", err)
	}
}

func TestEvaluate_CompletesAndRewards(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()
	user := seedUser(t, db)

	if _, err := missions.CreateMission(db, "stroll", "", 2000, 30); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}

	if _, err := rewards.RecordActivity(context.Background(), user.ID, 2500, models.SourceSteps, nil); err != nil {
		t.Fatalf("RecordActivity returned error: %v", err)
	}

	var um models.UserMission
	if err := db.First(&um, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to read user mission: %v", err)
	}
	if !um.IsCompleted || um.Achieved == nil {
		t.Fatalf("mission not completed: %+v", um)
	}

	// 2500 steps earn 20 aura, the mission adds 30 more.
	got := reloadUser(t, db, user.ID)
	if got.Aura != 50 {
		t.Fatalf("expected aura 50, got %d", got.Aura)
	}
}

func TestEvaluate_LifetimeTotalAcrossEntries(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()
	user := seedUser(t, db)

	if _, err := missions.CreateMission(db, "marathon", "", 5000, 100); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		entry := models.DailyActivity{UserID: user.ID, StepCount: 2000, Source: models.SourceSteps}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		u := reloadUser(t, db, user.ID)
		return missions.Evaluate(tx, u)
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	var um models.UserMission
	if err := db.First(&um, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to read user mission: %v", err)
	}
	if !um.IsCompleted {
		t.Fatalf("6000 lifetime steps should complete a 5000 step mission")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()
	user := seedUser(t, db)

	if _, err := missions.CreateMission(db, "hike", "", 1000, 40); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}
	if _, err := rewards.RecordActivity(context.Background(), user.ID, 1500, models.SourceSteps, nil); err != nil {
		t.Fatalf("RecordActivity returned error: %v", err)
	}

	first := reloadUser(t, db, user.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		u := reloadUser(t, db, user.ID)
		return missions.Evaluate(tx, u)
	})
	if err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}

	second := reloadUser(t, db, user.ID)
	if second.Aura != first.Aura || second.Level != first.Level {
		t.Fatalf("re-evaluation granted again: aura %d->%d level %d->%d",
			first.Aura, second.Aura, first.Level, second.Level)
	}
}

func TestEvaluate_AuraRoutesThroughLevel(t *testing.T) {
	rewards, db := newTestRewards(t)
	missions := rewards.Missions()
	user := seedUser(t, db)

	if _, err := missions.CreateMission(db, "summit", "", 1000, 200); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}
	if _, err := rewards.RecordActivity(context.Background(), user.ID, 1000, models.SourceSteps, nil); err != nil {
		t.Fatalf("RecordActivity returned error: %v", err)
	}

	// 10 aura from steps plus 200 from the mission crosses 120, 140, 160,
	// 180 and 200.
	got := reloadUser(t, db, user.ID)
	if got.Aura != 210 {
		t.Fatalf("expected aura 210, got %d", got.Aura)
	}
	if got.Level != 6 {
		t.Fatalf("expected level 6, got %d", got.Level)
	}
}
