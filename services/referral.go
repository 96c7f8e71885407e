package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walkitapp/walkit/models"
)

// Referrals links an inviter and an invitee exactly once and grants the flat
// referral reward to both parties through the activity ledger.
type Referrals struct {
	rewards *Rewards
}

// NewReferrals creates the coordinator on top of the shared ledger.
func NewReferrals(rewards *Rewards) *Referrals {
	return &Referrals{rewards: rewards}
}

// Link records one referral entry for each party and stamps the invitee with
// the inviter's invite code. The operation is not idempotent: the caller must
// only invoke it while invitee.InvitedBy is still unset, which is re-checked
// here as the last line of defense. Runs inside the caller's transaction so a
// failed grant rolls back the link.
func (r *Referrals) Link(tx *gorm.DB, inviter, invitee *models.User) error {
	if inviter == nil || invitee == nil || inviter.ID == invitee.ID {
		return ErrValidation
	}
	if invitee.InvitedBy != nil {
		return ErrInviteConsumed
	}

	// The invitee row is already held by the caller's transaction; take the
	// same lock on the inviter before touching their balance.
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(inviter, "id = ?", inviter.ID).Error; err != nil {
		return err
	}

	if _, err := r.rewards.recordTx(tx, inviter, 0, models.SourceReferral, nil); err != nil {
		return err
	}
	inviterLog := models.NewEventLog(inviter.ID, "referral",
		fmt.Sprintf("Referred: %s", invitee.Username),
		map[string]any{"invitee_id": invitee.ID})
	if err := tx.Create(inviterLog).Error; err != nil {
		return err
	}

	if _, err := r.rewards.recordTx(tx, invitee, 0, models.SourceReferral, nil); err != nil {
		return err
	}
	inviteeLog := models.NewEventLog(invitee.ID, "referral",
		fmt.Sprintf("I was referred by %s", inviter.Username),
		map[string]any{"inviter_id": inviter.ID})
	if err := tx.Create(inviteeLog).Error; err != nil {
		return err
	}

	code := inviter.InviteCode
	invitee.InvitedBy = &code
	return tx.Save(invitee).Error
}
