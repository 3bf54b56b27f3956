package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCategories = []string{"Sport", "Entertainment", "Politics"}

var seedPhrases = []string{
	"pineapple belongs on pizza and always has",
	"the sequel was better than the original",
	"morning people are just bragging",
	"VAR ruined football",
	"cereal is a soup",
	"the book is never actually better than the movie",
	"penalty shootouts should be replaced with extra time forever",
	"award shows stopped mattering a decade ago",
	"hot chocolate beats coffee in every season",
	"the group stage is the best part of any tournament",
}

// SeedTestData resets the database and populates it with demo users, takes,
// and reactions.
//
// Behavior:
//  1. Clears existing rows in reactions, takes, and users.
//  2. Creates 20 users with bcrypt-hashed passwords.
//  3. Creates ~60 takes (half public posts, half direct) and scatters
//     reactions over them.
//
// Counters are derived from the inserted ledger rows, so the seeded data
// satisfies the same ledger/counter invariant the toggle path maintains.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"reactions", "takes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if db.Dialector.Name() == "mysql" {
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	usernames := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		username := fmt.Sprintf("user%d", i)

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     username,
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		usernames = append(usernames, username)
	}
	log.Println("Seeded 20 users.")

	// --- Seed Takes + Reactions ---
	kinds := Kinds()
	for i := 0; i < 60; i++ {
		sender := usernames[r.Intn(len(usernames))]
		take := Take{
			ID:       uuid.NewString(),
			Sender:   sender,
			Content:  seedPhrases[r.Intn(len(seedPhrases))],
			Category: seedCategories[r.Intn(len(seedCategories))],
			IsPublic: i%2 == 0,
		}
		if !take.IsPublic {
			recipient := usernames[r.Intn(len(usernames))]
			for recipient == sender {
				recipient = usernames[r.Intn(len(usernames))]
			}
			take.RecipientUsername = recipient
		}

		// scatter 0..15 reactions, one per reacting user
		reactionCount := r.Intn(16)
		reactions := make([]Reaction, 0, reactionCount)
		for _, idx := range r.Perm(len(usernames))[:reactionCount] {
			kind := kinds[r.Intn(len(kinds))]
			reactions = append(reactions, Reaction{
				TakeID:   take.ID,
				Username: usernames[idx],
				Kind:     kind,
			})
			switch kind {
			case ReactionValid:
				take.Valid++
			case ReactionSpicy:
				take.Spicy++
			case ReactionTrash:
				take.Trash++
			case ReactionMid:
				take.Mid++
			}
		}

		if err := db.Create(&take).Error; err != nil {
			return fmt.Errorf("failed to seed take: %w", err)
		}
		if len(reactions) > 0 {
			if err := db.Create(&reactions).Error; err != nil {
				return fmt.Errorf("failed to seed reactions: %w", err)
			}
		}
	}
	log.Println("Seeded 60 takes.")

	return nil
}
