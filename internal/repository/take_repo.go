package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hoossayn/hottakes-backend/internal/db"
	"github.com/Hoossayn/hottakes-backend/internal/utils/pagination"
)

// RankMode selects how a listing is ordered.
type RankMode string

const (
	ModeNewest        RankMode = "newest"
	ModeTrending      RankMode = "trending"
	ModeControversial RankMode = "controversial"
)

// controversialMinReactions is the floor below which a take is excluded from
// controversial listings entirely.
const controversialMinReactions = 10

// ListScope selects which slice of the takes table a listing covers.
type ListScope int

const (
	// ScopeInbound matches takes addressed to Username.
	ScopeInbound ListScope = iota
	// ScopeMine matches takes sent by Username.
	ScopeMine
	// ScopePublic matches the public feed.
	ScopePublic
	// ScopeReactedBy matches takes carrying a ledger entry by Username.
	ScopeReactedBy
)

// ListFilter describes one ranked, paginated listing.
//
// UnseenBy, when set, excludes takes the named user has already reacted to.
// The exclusion is part of the query, so it applies before ranking and
// pagination and pages stay full.
type ListFilter struct {
	Scope    ListScope
	Username string // scope subject; ignored for ScopePublic
	Mode     RankMode
	UnseenBy string
	Page     pagination.Page
}

// totalExpr sums the four per-kind counters in SQL.
const totalExpr = "(valid + spicy + trash + mid)"

// TakeRepository provides data access for takes and their reaction ledger.
type TakeRepository struct {
	db *gorm.DB
}

// NewTakeRepository creates a new repository bound to the given DB connection.
func NewTakeRepository(database *gorm.DB) *TakeRepository {
	return &TakeRepository{db: database}
}

// Create inserts a freshly constructed take.
func (r *TakeRepository) Create(ctx context.Context, take *db.Take) error {
	return r.db.WithContext(ctx).Create(take).Error
}

// CreateMany inserts a batch of takes in a single transaction: either every
// row lands or none do. Intended for bulk seeding; rows are stored verbatim.
func (r *TakeRepository) CreateMany(ctx context.Context, takes []db.Take) error {
	if len(takes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(takes, 100).Error
	})
}

// FindByID loads a single take. Returns gorm.ErrRecordNotFound when absent.
func (r *TakeRepository) FindByID(ctx context.Context, id string) (*db.Take, error) {
	var take db.Take
	if err := r.db.WithContext(ctx).First(&take, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &take, nil
}

// Delete removes a take together with its reaction ledger. The ledger rows
// go first so a crash between the two statements cannot orphan them.
func (r *TakeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var take db.Take
		if err := tx.First(&take, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("take_id = ?", id).Delete(&db.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&take).Error
	})
}

// List returns one ranked page of takes plus the total count of the filtered
// set (pre-pagination, so callers can size pagers correctly).
func (r *TakeRepository) List(ctx context.Context, f ListFilter) ([]db.Take, int64, error) {
	query := r.db.WithContext(ctx).Model(&db.Take{})

	switch f.Scope {
	case ScopeInbound:
		query = query.Where("recipient_username = ?", f.Username)
	case ScopeMine:
		query = query.Where("sender = ?", f.Username)
	case ScopePublic:
		query = query.Where("is_public = ?", true)
	case ScopeReactedBy:
		query = query.Where(
			"EXISTS (SELECT 1 FROM reactions r WHERE r.take_id = takes.id AND r.username = ?)",
			f.Username,
		)
	}

	if f.UnseenBy != "" {
		query = query.Where(
			"NOT EXISTS (SELECT 1 FROM reactions r WHERE r.take_id = takes.id AND r.username = ?)",
			f.UnseenBy,
		)
	}

	if f.Mode == ModeControversial {
		query = query.Where(totalExpr+" >= ?", controversialMinReactions)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Mode {
	case ModeTrending:
		query = query.Order(totalExpr + " DESC")
	case ModeControversial:
		// Polarity: |(valid+spicy) - trash| / total, ascending. Mid dilutes
		// the denominator without tilting either side. Ties break newest
		// first.
		query = query.
			Order("ABS((valid + spicy) - trash) * 1.0 / " + totalExpr + " ASC").
			Order("created_at DESC")
	default:
		// The previously-reacted view sorts by recency of interaction, every
		// other newest listing by authorship time.
		if f.Scope == ScopeReactedBy {
			query = query.Order("updated_at DESC")
		} else {
			query = query.Order("created_at DESC")
		}
	}

	var takes []db.Take
	err := query.
		Offset(f.Page.Offset()).
		Limit(f.Page.Limit).
		Find(&takes).Error
	if err != nil {
		return nil, 0, err
	}
	return takes, total, nil
}

// FindReaction returns the acting user's ledger entry for a take, if any.
func (r *TakeRepository) FindReaction(ctx context.Context, takeID, username string) (*db.Reaction, error) {
	var reaction db.Reaction
	err := r.db.WithContext(ctx).
		Where("take_id = ? AND username = ?", takeID, username).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// React applies one reaction toggle for (takeID, username, kind) and reports
// whether the toggle ended with the reaction present ("added") or absent
// ("removed").
//
// The ledger row and the counter columns move together inside one
// transaction, and every write is fenced:
//   - adds insert against the (take_id, username) composite PK, so a
//     concurrent duplicate surfaces as gorm.ErrDuplicatedKey,
//   - removes and switches carry the prior kind in their WHERE clause and
//     check RowsAffected, so a raced ledger row is never double-counted.
//
// A fenced write that hits stale state returns gorm.ErrDuplicatedKey for the
// service layer to retry once.
func (r *TakeRepository) React(
	ctx context.Context,
	takeID, username string,
	kind db.ReactionKind,
) (added bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior db.Reaction
		findErr := tx.Where("take_id = ? AND username = ?", takeID, username).
			First(&prior).Error

		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			// No prior entry: add it and bump the counter.
			entry := db.Reaction{TakeID: takeID, Username: username, Kind: kind}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			if err := adjustCounter(tx, takeID, kind, +1); err != nil {
				return err
			}
			added = true
			return nil

		case findErr != nil:
			return findErr

		case prior.Kind == kind:
			// Same kind: toggle off. The kind guard in the WHERE clause makes
			// the delete a no-op if another call switched the entry first.
			res := tx.Where("take_id = ? AND username = ? AND kind = ?", takeID, username, kind).
				Delete(&db.Reaction{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrDuplicatedKey
			}
			if err := adjustCounter(tx, takeID, kind, -1); err != nil {
				return err
			}
			added = false
			return nil

		default:
			// Different kind: switch the entry, move one count across.
			res := tx.Model(&db.Reaction{}).
				Where("take_id = ? AND username = ? AND kind = ?", takeID, username, prior.Kind).
				Update("kind", kind)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrDuplicatedKey
			}
			if err := adjustCounter(tx, takeID, prior.Kind, -1); err != nil {
				return err
			}
			if err := adjustCounter(tx, takeID, kind, +1); err != nil {
				return err
			}
			added = true
			return nil
		}
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Stats aggregates a user's footprint: takes received, takes posted, and
// total reactions gathered by their posts. Computed in SQL so it stays flat
// as the table grows.
func (r *TakeRepository) Stats(ctx context.Context, username string) (received, posted, totalReactions int64, err error) {
	base := r.db.WithContext(ctx).Model(&db.Take{})

	if err = base.Session(&gorm.Session{}).
		Where("recipient_username = ?", username).
		Count(&received).Error; err != nil {
		return 0, 0, 0, err
	}

	if err = base.Session(&gorm.Session{}).
		Where("sender = ?", username).
		Count(&posted).Error; err != nil {
		return 0, 0, 0, err
	}

	row := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM"+totalExpr+", 0)").
		Where("sender = ?", username).
		Row()
	if err = row.Scan(&totalReactions); err != nil {
		return 0, 0, 0, err
	}

	return received, posted, totalReactions, nil
}

// CountForRecipient counts takes addressed to the given user.
func (r *TakeRepository) CountForRecipient(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Take{}).
		Where("recipient_username = ?", username).
		Count(&count).Error
	return count, err
}

// adjustCounter moves one kind's counter by delta as a SQL expression, never
// read-modify-write in Go. GORM bumps updated_at as part of the same update.
func adjustCounter(tx *gorm.DB, takeID string, kind db.ReactionKind, delta int) error {
	col, err := counterColumn(kind)
	if err != nil {
		return err
	}
	return tx.Model(&db.Take{}).
		Where("id = ?", takeID).
		Update(col, gorm.Expr(col+" + ?", delta)).Error
}

// counterColumn maps a reaction kind to its counter column. The closed enum
// keeps arbitrary column names out of the SQL.
func counterColumn(kind db.ReactionKind) (string, error) {
	switch kind {
	case db.ReactionValid:
		return "valid", nil
	case db.ReactionSpicy:
		return "spicy", nil
	case db.ReactionTrash:
		return "trash", nil
	case db.ReactionMid:
		return "mid", nil
	}
	return "", gorm.ErrInvalidField
}
