package db

import (
	"time"
)

// ReactionKind is the closed set of reactions a take can receive.
type ReactionKind string

const (
	ReactionSpicy ReactionKind = "spicy"
	ReactionTrash ReactionKind = "trash"
	ReactionMid   ReactionKind = "mid"
	ReactionValid ReactionKind = "valid"
)

// Kinds lists every recognized reaction kind.
func Kinds() []ReactionKind {
	return []ReactionKind{ReactionSpicy, ReactionTrash, ReactionMid, ReactionValid}
}

// IsValid reports whether k is one of the four recognized kinds.
func (k ReactionKind) IsValid() bool {
	switch k {
	case ReactionSpicy, ReactionTrash, ReactionMid, ReactionValid:
		return true
	}
	return false
}

// User table. Users are an external concern here: the takes core only ever
// resolves them by username, it never mutates them.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Active       bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Take is a single opinion post together with its denormalized reaction
// counters. The per-user reaction ledger lives in the reactions table; for
// every kind the counter column must equal the number of ledger rows of that
// kind. All counter mutations go through TakeRepository.React, which keeps
// both in one transaction.
//
// Sender holds "anonymous" when the submitting user could not be resolved.
// RecipientUsername is empty for public-feed-only posts.
type Take struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Sender            string    `gorm:"size:64;index;not null" json:"sender"`
	RecipientUsername string    `gorm:"size:64;index" json:"recipientUsername,omitempty"`
	Content           string    `gorm:"type:text" json:"content"`
	Category          string    `gorm:"size:64" json:"category"`
	IsPublic          bool      `gorm:"index;not null" json:"isPublic"`
	Valid             int64     `gorm:"not null;default:0" json:"valid"`
	Spicy             int64     `gorm:"not null;default:0" json:"spicy"`
	Trash             int64     `gorm:"not null;default:0" json:"trash"`
	Mid               int64     `gorm:"not null;default:0" json:"mid"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index:idx_takes_created,sort:desc" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TotalReactions is the sum of all four counters.
func (t *Take) TotalReactions() int64 {
	return t.Valid + t.Spicy + t.Trash + t.Mid
}

// Reaction is one ledger entry: user X reacted to take Y with kind K.
//
// Composite PK: (TakeID, Username)
//   - Enforces at most one entry per user per take; a concurrent duplicate
//     insert surfaces as a key conflict instead of a second row.
//
// Index idx_reactions_username supports the "previously reacted" and
// "unseen inbound" queries.
type Reaction struct {
	TakeID    string       `gorm:"primaryKey;size:36" json:"takeId"`
	Username  string       `gorm:"primaryKey;size:64;index:idx_reactions_username" json:"username"`
	Kind      ReactionKind `gorm:"size:16;not null" json:"reaction"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}
