package services

import (
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
)

// generationAttempts bounds every retry-until-unique loop. Exhaustion is a
// server-side failure, not something the client can fix.
const generationAttempts = 10

// GenerateUnique draws candidates from gen until taken reports a free one,
// giving up after the bounded number of attempts.
func GenerateUnique(gen func() string, taken func(string) (bool, error)) (string, error) {
	for i := 0; i < generationAttempts; i++ {
		candidate := gen()
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrGenerationExhausted
}

var usernameAdjectives = []string{
	"Amber", "Bold", "Brisk", "Calm", "Clever", "Crimson", "Daring", "Eager",
	"Fleet", "Gentle", "Golden", "Hardy", "Keen", "Lively", "Lunar", "Mellow",
	"Nimble", "Polar", "Quiet", "Rapid", "Rustic", "Silver", "Steady", "Swift",
	"Vivid", "Wandering", "Wild", "Witty",
}

var usernameNouns = []string{
	"Badger", "Bison", "Condor", "Coyote", "Crane", "Falcon", "Fox", "Gazelle",
	"Heron", "Ibex", "Jackal", "Kestrel", "Lynx", "Marmot", "Otter", "Panther",
	"Puffin", "Raven", "Stag", "Swallow", "Tapir", "Vole", "Walrus", "Wolf",
}

// randomUsername produces a readable two-word display handle, e.g.
// "Swift Falcon". Collisions are resolved by the bounded retry above.
func randomUsername() string {
	adj := usernameAdjectives[rand.Intn(len(usernameAdjectives))]
	noun := usernameNouns[rand.Intn(len(usernameNouns))]
	return fmt.Sprintf("%s %s", adj, noun)
}

// uniqueUsername assigns a free generated username, checking inside the
// caller's transaction.
func uniqueUsername(tx *gorm.DB) (string, error) {
	return GenerateUnique(randomUsername, func(candidate string) (bool, error) {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}

// uniqueInviteCode assigns a free invite code for the given email.
func uniqueInviteCode(tx *gorm.DB, email string) (string, error) {
	return GenerateUnique(func() string { return models.GenerateInviteCode(email) }, func(candidate string) (bool, error) {
		var count int64
		if err := tx.Model(&models.User{}).Where("invite_code = ?", candidate).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}
