package services

import (
	"context"
	"errors"
	"testing"

	"github.com/walkitapp/walkit/models"
)

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func TestSignIn_CreatesAndBindsNewUser(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "new@example.com", Name: "New Walker"}}, rewards)

	result, err := auth.SignIn(context.Background(), "token", "device-1", "")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected a created account")
	}

	user := result.User
	if user.Email != "new@example.com" || user.Name != "New Walker" {
		t.Fatalf("identity not applied: %+v", user)
	}
	if user.DeviceID == nil || *user.DeviceID != "device-1" {
		t.Fatalf("device not bound: %v", user.DeviceID)
	}
	if user.Username == "" || user.InviteCode == "" {
		t.Fatalf("generated fields missing: %+v", user)
	}
	if user.Goal != 1000 || user.Level != 1 {
		t.Fatalf("defaults not applied: goal=%d level=%d", user.Goal, user.Level)
	}
}

func TestSignIn_EnrollsNewUserInMissions(t *testing.T) {
	rewards, db := newTestRewards(t)
	if _, err := rewards.Missions().CreateMission(db, "starter", "", 1000, 10); err != nil {
		t.Fatalf("CreateMission returned error: %v", err)
	}
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "walker@example.com"}}, rewards)

	result, err := auth.SignIn(context.Background(), "token", "device-1", "")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	var count int64
	db.Model(&models.UserMission{}).Where("user_id = ?", result.User.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected enrollment in 1 mission, got %d", count)
	}
}

func TestSignIn_ExistingUserSameDevice(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "rider@example.com"}}, rewards)

	first, err := auth.SignIn(context.Background(), "token", "device-9", "")
	if err != nil {
		t.Fatalf("first SignIn returned error: %v", err)
	}
	second, err := auth.SignIn(context.Background(), "token", "device-9", "")
	if err != nil {
		t.Fatalf("second SignIn returned error: %v", err)
	}
	if second.Created {
		t.Fatalf("second sign-in created a duplicate account")
	}
	if second.User.ID != first.User.ID {
		t.Fatalf("sign-in resolved a different account")
	}
}

func TestSignIn_BindsNullDevice(t *testing.T) {
	rewards, db := newTestRewards(t)
	user := seedUser(t, db)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: user.Email}}, rewards)

	result, err := auth.SignIn(context.Background(), "token", "fresh-device", "")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.User.DeviceID == nil || *result.User.DeviceID != "fresh-device" {
		t.Fatalf("device not bound on first contact: %v", result.User.DeviceID)
	}
}

func TestSignIn_DeviceMismatchRejected(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "locked@example.com"}}, rewards)

	if _, err := auth.SignIn(context.Background(), "token", "device-a", ""); err != nil {
		t.Fatalf("first SignIn returned error: %v", err)
	}

	_, err := auth.SignIn(context.Background(), "token", "device-b", "")
	if !errors.Is(err, ErrDeviceConflict) {
		t.Fatalf("expected ErrDeviceConflict, got %v", err)
	}
}

func TestSignIn_DeviceHeldByOtherUser(t *testing.T) {
	rewards, db := newTestRewards(t)

	holder := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "holder@example.com"}}, rewards)
	if _, err := holder.SignIn(context.Background(), "token", "shared-device", ""); err != nil {
		t.Fatalf("holder SignIn returned error: %v", err)
	}

	intruder := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "intruder@example.com"}}, rewards)
	_, err := intruder.SignIn(context.Background(), "token", "shared-device", "")
	if !errors.Is(err, ErrDeviceConflict) {
		t.Fatalf("expected ErrDeviceConflict, got %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "intruder@example.com").Count(&count)
	if count != 0 {
		t.Fatalf("conflicting sign-in still created an account")
	}
}

func TestSignIn_ReferralOnCreate(t *testing.T) {
	rewards, db := newTestRewards(t)
	inviter := seedUser(t, db)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "friend@example.com"}}, rewards)

	result, err := auth.SignIn(context.Background(), "token", "device-r", inviter.InviteCode)
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.User.InvitedBy == nil || *result.User.InvitedBy != inviter.InviteCode {
		t.Fatalf("invited_by not set: %v", result.User.InvitedBy)
	}

	gotInviter := reloadUser(t, db, inviter.ID)
	if gotInviter.Balance != 100 || gotInviter.Aura != 50 {
		t.Fatalf("inviter not rewarded: balance=%d aura=%d", gotInviter.Balance, gotInviter.Aura)
	}
}

func TestSignIn_ReferralOnLaterSignIn(t *testing.T) {
	rewards, db := newTestRewards(t)
	inviter := seedUser(t, db)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "late@example.com"}}, rewards)

	if _, err := auth.SignIn(context.Background(), "token", "device-l", ""); err != nil {
		t.Fatalf("first SignIn returned error: %v", err)
	}

	result, err := auth.SignIn(context.Background(), "token", "device-l", inviter.InviteCode)
	if err != nil {
		t.Fatalf("second SignIn returned error: %v", err)
	}
	if result.User.InvitedBy == nil {
		t.Fatalf("invite presented on a later sign-in was not honored")
	}
}

func TestSignIn_ReferralOnlyOnce(t *testing.T) {
	rewards, db := newTestRewards(t)
	first := seedUser(t, db)
	second := seedUser(t, db)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "once@example.com"}}, rewards)

	if _, err := auth.SignIn(context.Background(), "token", "device-o", first.InviteCode); err != nil {
		t.Fatalf("first SignIn returned error: %v", err)
	}
	result, err := auth.SignIn(context.Background(), "token", "device-o", second.InviteCode)
	if err != nil {
		t.Fatalf("second SignIn returned error: %v", err)
	}
	if *result.User.InvitedBy != first.InviteCode {
		t.Fatalf("invited_by rewritten to %q", *result.User.InvitedBy)
	}

	gotSecond := reloadUser(t, db, second.ID)
	if gotSecond.Balance != 0 {
		t.Fatalf("second inviter rewarded: balance=%d", gotSecond.Balance)
	}
}

func TestSignIn_UnknownInviteIgnored(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "solo@example.com"}}, rewards)

	result, err := auth.SignIn(context.Background(), "token", "device-u", "nosuchcode")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.User.InvitedBy != nil {
		t.Fatalf("unknown invite code produced a referral")
	}
}

func TestSignIn_VerifierFailure(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{err: ErrExternalAuth}, rewards)

	_, err := auth.SignIn(context.Background(), "token", "device-x", "")
	if !errors.Is(err, ErrExternalAuth) {
		t.Fatalf("expected ErrExternalAuth, got %v", err)
	}
}

func TestSignIn_MissingInput(t *testing.T) {
	rewards, db := newTestRewards(t)
	auth := NewAuth(db, testConfig(), &fakeVerifier{identity: &Identity{Email: "x@example.com"}}, rewards)

	if _, err := auth.SignIn(context.Background(), "", "device", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty token, got %v", err)
	}
	if _, err := auth.SignIn(context.Background(), "token", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty device, got %v", err)
	}
}
