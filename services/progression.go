package services

import (
	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/models"
)

// Progression owns the aura-to-level mapping. All aura mutations must go
// through ApplyAuraDelta so the level can never drift from the aura it is
// derived from.
type Progression struct {
	baseAura        int
	levelMultiplier int
}

// NewProgression builds the engine from configured thresholds.
func NewProgression(cfg config.AppConfig) *Progression {
	return &Progression{
		baseAura:        cfg.BaseAura,
		levelMultiplier: cfg.LevelMultiplier,
	}
}

// Threshold returns the cumulative aura required to leave the given level.
func (p *Progression) Threshold(level int) int {
	return p.baseAura + level*p.levelMultiplier
}

// ApplyAuraDelta adjusts the user's aura and recomputes the level. It touches
// only the Aura and Level fields; the caller persists the user. Applying a
// zero delta is a no-op once the level matches the aura.
func (p *Progression) ApplyAuraDelta(u *models.User, delta int) {
	u.Aura += delta
	if u.Aura < 0 {
		u.Aura = 0
	}
	if u.Level < 1 {
		u.Level = 1
	}
	for u.Aura >= p.Threshold(u.Level) {
		u.Level++
	}
	for u.Level > 1 && u.Aura < p.Threshold(u.Level-1) {
		u.Level--
	}
}
