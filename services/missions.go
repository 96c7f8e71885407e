package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walkitapp/walkit/models"
)

// Missions evaluates goal-based milestones against the cumulative activity
// ledger and keeps every user enrolled in every mission.
type Missions struct {
	prog *Progression
}

// NewMissions creates the tracker on top of the shared progression engine.
func NewMissions(prog *Progression) *Missions {
	return &Missions{prog: prog}
}

// Evaluate checks all of the user's incomplete missions against the lifetime
// step total and completes the ones whose requirement is met. The aura reward
// goes through the progression engine, so the level is recomputed in the same
// step. A second run with no new activity changes nothing.
//
// Must be called inside the transaction mutating the user; the user row is
// persisted here when any mission completes.
func (m *Missions) Evaluate(tx *gorm.DB, user *models.User) error {
	var pending []models.UserMission
	if err := tx.Preload("Mission").
		Where("user_id = ? AND is_completed = ?", user.ID, false).
		Find(&pending).Error; err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var totalSteps int64
	if err := tx.Model(&models.DailyActivity{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(step_count), 0)").
		Scan(&totalSteps).Error; err != nil {
		return err
	}

	completed := false
	now := time.Now()
	for i := range pending {
		um := &pending[i]
		if totalSteps < int64(um.Mission.RequirementSteps) {
			continue
		}

		um.IsCompleted = true
		um.Achieved = &now
		if err := tx.Model(&models.UserMission{}).
			Where("id = ?", um.ID).
			Updates(map[string]interface{}{"is_completed": true, "achieved": now}).Error; err != nil {
			return err
		}

		m.prog.ApplyAuraDelta(user, um.Mission.AuraReward)
		completed = true

		entry := models.NewEventLog(user.ID, "mission",
			fmt.Sprintf("Completed mission: %s", um.Mission.Name),
			map[string]any{"mission_id": um.MissionID, "aura_reward": um.Mission.AuraReward})
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
	}

	if completed {
		return tx.Save(user).Error
	}
	return nil
}

// EnrollUser creates the uncompleted UserMission row for every existing
// mission, called synchronously when a user is created. Together with
// EnrollMission it upholds count(UserMission) == count(User) * count(Mission).
func (m *Missions) EnrollUser(tx *gorm.DB, userID string) error {
	var missions []models.Mission
	if err := tx.Find(&missions).Error; err != nil {
		return err
	}
	for _, mission := range missions {
		um := models.UserMission{UserID: userID, MissionID: mission.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&um).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnrollMission mirrors EnrollUser for the other side of the pairing.
func (m *Missions) EnrollMission(tx *gorm.DB, missionID string) error {
	var userIDs []string
	if err := tx.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		um := models.UserMission{UserID: userID, MissionID: missionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&um).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateMission inserts a mission and enrolls every existing user in the same
// transaction. Creation is an operator path; there is no public endpoint.
func (m *Missions) CreateMission(db *gorm.DB, name, description string, requirementSteps, auraReward int) (*models.Mission, error) {
	if name == "" || requirementSteps < 0 || auraReward < 0 {
		return nil, ErrValidation
	}

	mission := models.Mission{
		Name:             name,
		Description:      description,
		RequirementSteps: requirementSteps,
		AuraReward:       auraReward,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mission).Error; err != nil {
			return err
		}
		return m.EnrollMission(tx, mission.ID)
	})
	if err != nil {
		return nil, err
	}
	return &mission, nil
}
