package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/models"
)

// Rewards is the activity ledger: it converts raw activity events into the
// durable state changes on a user (balance, aura, level, mission completion)
// inside a single transaction per event.
type Rewards struct {
	db       *gorm.DB
	cfg      config.AppConfig
	prog     *Progression
	missions *Missions
	mirror   StepMirror
}

// NewRewards wires the ledger with its progression engine and mission
// tracker. The mirror may be nil when no chain targets are configured.
func NewRewards(db *gorm.DB, cfg config.AppConfig, mirror StepMirror) *Rewards {
	prog := NewProgression(cfg)
	return &Rewards{
		db:       db,
		cfg:      cfg,
		prog:     prog,
		missions: NewMissions(prog),
		mirror:   mirror,
	}
}

// Progression exposes the shared engine for collaborators.
func (r *Rewards) Progression() *Progression { return r.prog }

// Missions exposes the shared tracker for collaborators.
func (r *Rewards) Missions() *Missions { return r.missions }

// DB exposes the underlying handle for read-only collaborators.
func (r *Rewards) DB() *gorm.DB { return r.db }

// RecordActivity appends one ledger entry and runs the full side-effect chain
// in one transaction: insert entry, credit balance, apply aura through the
// progression engine, persist the user, evaluate missions. For steps entries
// the trailing cooldown window is checked inside the same transaction as the
// insert. Step counts are mirrored to external ledgers only after commit.
func (r *Rewards) RecordActivity(ctx context.Context, userID string, stepCount int, source string, conversionRate *float64) (*models.DailyActivity, error) {
	if stepCount < 0 {
		return nil, ErrValidation
	}

	var entry *models.DailyActivity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if source == models.SourceSteps {
			cutoff := time.Now().Add(-time.Duration(r.cfg.ActivityCooldownHours) * time.Hour)
			var recent int64
			if err := tx.Model(&models.DailyActivity{}).
				Where("user_id = ? AND timestamp >= ?", userID, cutoff).
				Count(&recent).Error; err != nil {
				return err
			}
			if recent > 0 {
				return ErrRateLimited
			}
		}

		var err error
		entry, err = r.recordTx(tx, &user, stepCount, source, conversionRate)
		return err
	})
	if err != nil {
		return nil, err
	}

	if r.mirror != nil && source == models.SourceSteps {
		// Best-effort side channel. The committed entry is authoritative
		// whether or not any external ledger accepts the write.
		r.mirror.MirrorSteps(ctx, userID, stepCount)
	}

	return entry, nil
}

// recordTx runs the reward chain against an already locked user row. Referral
// linking reuses it so both parties' grants share the caller's transaction.
func (r *Rewards) recordTx(tx *gorm.DB, user *models.User, stepCount int, source string, conversionRate *float64) (*models.DailyActivity, error) {
	rate := r.cfg.ConversionRate
	if conversionRate != nil {
		rate = *conversionRate
	}

	reward, aura := r.computeReward(stepCount, source, rate)

	entry := models.DailyActivity{
		UserID:         user.ID,
		StepCount:      stepCount,
		AmountRewarded: reward,
		ConversionRate: rate,
		AuraGained:     aura,
		Source:         source,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	user.Balance += int(reward)
	r.prog.ApplyAuraDelta(user, aura)
	if err := tx.Save(user).Error; err != nil {
		return nil, err
	}

	if err := r.missions.Evaluate(tx, user); err != nil {
		return nil, err
	}

	if source == models.SourceSteps {
		log := models.NewEventLog(user.ID, "steps",
			fmt.Sprintf("Logged %d steps and rewarded %.2f", stepCount, reward),
			map[string]any{"activity_id": entry.ID, "aura_gained": aura})
		if err := tx.Create(log).Error; err != nil {
			return nil, err
		}
	}

	return &entry, nil
}

// computeReward freezes the reward policy into concrete amounts. Settled
// entries are never recomputed.
func (r *Rewards) computeReward(stepCount int, source string, rate float64) (reward float64, aura int) {
	switch source {
	case models.SourceSteps:
		return float64(stepCount) * rate, (stepCount / 1000) * r.cfg.StepAuraUnit
	case models.SourceReferral:
		return float64(r.cfg.ReferralReward), r.cfg.ReferralAura
	default:
		return 0, 0
	}
}

// ListActivities returns the user's most recent entries, newest first.
func (r *Rewards) ListActivities(ctx context.Context, userID string, limit int) ([]models.DailyActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.DailyActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Streak derives the count of consecutive calendar days ending today with at
// least one steps entry. It is recomputed on every read, never stored.
func (r *Rewards) Streak(ctx context.Context, userID string) (int, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).Model(&models.DailyActivity{}).
		Where("user_id = ? AND source = ?", userID, models.SourceSteps).
		Order("timestamp DESC").
		Pluck("timestamp", &timestamps).Error
	if err != nil {
		return 0, err
	}
	if len(timestamps) == 0 {
		return 0, nil
	}

	streak := 0
	expected := startOfDay(time.Now())
	for _, ts := range timestamps {
		day := startOfDay(ts)
		switch {
		case day.Equal(expected):
			streak++
			expected = expected.AddDate(0, 0, -1)
		case day.Before(expected):
			return streak, nil
		}
		// A second entry on an already counted day is skipped.
	}
	return streak, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
