package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/models"
)

// Auth resolves verified identities to accounts with a device binding.
type Auth struct {
	db        *gorm.DB
	cfg       config.AppConfig
	verifier  Verifier
	rewards   *Rewards
	referrals *Referrals
}

// NewAuth wires the sign-in flow over the shared reward engine.
func NewAuth(db *gorm.DB, cfg config.AppConfig, verifier Verifier, rewards *Rewards) *Auth {
	return &Auth{
		db:        db,
		cfg:       cfg,
		verifier:  verifier,
		rewards:   rewards,
		referrals: NewReferrals(rewards),
	}
}

// SignInResult reports the resolved account and whether it was just created.
type SignInResult struct {
	User    *models.User
	Created bool
}

// SignIn verifies the provider token and returns the account bound to the
// device, creating it on first sign-in. An invite code is honored at most
// once per account, on whichever sign-in first presents a valid one.
func (a *Auth) SignIn(ctx context.Context, idToken, deviceID, inviteCode string) (*SignInResult, error) {
	if idToken == "" || deviceID == "" {
		return nil, ErrValidation
	}

	identity, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	result := &SignInResult{}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inviter, err := a.resolveInviter(tx, inviteCode)
		if err != nil {
			return err
		}

		// Reject up front when another account already holds the device.
		// The unique index on device_id closes the remaining race.
		var holder models.User
		err = tx.Where("device_id = ? AND email <> ?", deviceID, identity.Email).First(&holder).Error
		if err == nil {
			return ErrDeviceConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var user models.User
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", identity.Email).First(&user).Error
		switch {
		case err == nil:
			if err := a.signInExisting(tx, &user, deviceID, inviter); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, err := a.createUser(tx, identity, deviceID, inviter)
			if err != nil {
				return err
			}
			user = *created
			result.Created = true
		default:
			return err
		}

		result.User = &user
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDeviceConflict
		}
		return nil, err
	}
	return result, nil
}

// resolveInviter looks up the account owning inviteCode. An empty code means
// no referral; an unknown code is ignored rather than failing the sign-in.
func (a *Auth) resolveInviter(tx *gorm.DB, inviteCode string) (*models.User, error) {
	if inviteCode == "" {
		return nil, nil
	}
	var inviter models.User
	err := tx.Where("invite_code = ?", inviteCode).First(&inviter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inviter, nil
}

func (a *Auth) signInExisting(tx *gorm.DB, user *models.User, deviceID string, inviter *models.User) error {
	if user.DeviceID == nil {
		user.DeviceID = &deviceID
		if err := tx.Save(user).Error; err != nil {
			return err
		}
	} else if *user.DeviceID != deviceID {
		return ErrDeviceConflict
	}

	if inviter != nil && user.InvitedBy == nil && inviter.ID != user.ID {
		if err := a.referrals.Link(tx, inviter, user); err != nil {
			if errors.Is(err, ErrInviteConsumed) || errors.Is(err, ErrValidation) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (a *Auth) createUser(tx *gorm.DB, identity *Identity, deviceID string, inviter *models.User) (*models.User, error) {
	username, err := uniqueUsername(tx)
	if err != nil {
		return nil, err
	}
	inviteCode, err := uniqueInviteCode(tx, identity.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      identity.Email,
		Name:       identity.Name,
		Username:   username,
		DeviceID:   &deviceID,
		Goal:       a.cfg.DefaultStepGoal,
		Level:      1,
		InviteCode: inviteCode,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, err
	}
	if err := a.rewards.Missions().EnrollUser(tx, user.ID); err != nil {
		return nil, err
	}

	if inviter != nil {
		if err := a.referrals.Link(tx, inviter, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}
