package takes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Hoossayn/hottakes-backend/internal/app"
	"github.com/Hoossayn/hottakes-backend/internal/db"
	svcErr "github.com/Hoossayn/hottakes-backend/internal/errors"
	"github.com/Hoossayn/hottakes-backend/internal/notify"
	"github.com/Hoossayn/hottakes-backend/internal/repository"
	"github.com/Hoossayn/hottakes-backend/internal/utils/pagination"
)

// AnonymousSender is stored when a direct take's sender cannot be resolved.
// That is default behavior, not an error: anyone may send anonymously.
const AnonymousSender = "anonymous"

// notifyTimeout bounds the fire-and-forget intent publish. The request
// context is not reused because the mutation has already returned by then.
const notifyTimeout = 5 * time.Second

// ReactOutcome reports where a toggle landed.
type ReactOutcome string

const (
	OutcomeAdded   ReactOutcome = "added"
	OutcomeRemoved ReactOutcome = "removed"
)

// CreateTakeInput is the payload for a direct take.
type CreateTakeInput struct {
	To       string `json:"to"`
	Sender   string `json:"sender"`
	Content  string `json:"content"`
	Category string `json:"category"`
	IsPublic bool   `json:"isPublic"`
}

// PostTakeInput is the payload for a public-feed post.
type PostTakeInput struct {
	Sender   string `json:"sender"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ListRequest carries the common listing knobs. Zero values fall back to
// page 1 and the call site's default limit; an unknown mode ranks as newest.
type ListRequest struct {
	Page  int
	Limit int
	Mode  repository.RankMode
}

// TakePage is one ranked page plus the total size of the filtered set.
type TakePage struct {
	Takes      []db.Take `json:"data"`
	TotalCount int64     `json:"totalCount"`
}

// UserStats aggregates a user's footprint.
type UserStats struct {
	TakesReceived  int64 `json:"takesReceived"`
	TakesPosted    int64 `json:"takesPosted"`
	TotalReactions int64 `json:"totalReactions"`
}

// Service implements the hot takes core: creation, reaction toggles, ranked
// listings, and stats, on top of the repository and cache layers.
type Service struct {
	appCtx   *app.AppContext
	takeRepo *repository.TakeRepository
	userRepo *repository.UserRepository
	baseURL  string
}

// NewService creates the takes service with dependencies from AppContext.
// baseURL is the public prefix for shareable take URLs.
func NewService(appCtx *app.AppContext, baseURL string) *Service {
	return &Service{
		appCtx:   appCtx,
		takeRepo: repository.NewTakeRepository(appCtx.DB),
		userRepo: repository.NewUserRepository(appCtx.DB),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// CreateTake stores a direct take addressed to a known recipient.
//
// Behavior:
//   - Recipient must resolve, otherwise NotFound.
//   - An unresolved or omitted sender is stored as "anonymous".
//   - The take starts with zeroed counters and an empty ledger.
//   - Raises a take-created intent addressed to the recipient.
func (s *Service) CreateTake(ctx context.Context, in CreateTakeInput) (*db.Take, error) {
	s.appCtx.Logger.Debug("CreateTake called", "to", in.To, "sender", in.Sender)

	recipient, err := s.userRepo.FindByUsername(ctx, in.To)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("recipient user not found")
		}
		return nil, svcErr.Map(err)
	}

	sender := AnonymousSender
	if in.Sender != "" {
		senderUser, err := s.userRepo.FindByUsername(ctx, in.Sender)
		switch {
		case err == nil:
			sender = senderUser.Username
		case errors.Is(err, gorm.ErrRecordNotFound):
			// unknown sender stays anonymous
		default:
			return nil, svcErr.Map(err)
		}
	}

	take := &db.Take{
		ID:                uuid.NewString(),
		Sender:            sender,
		RecipientUsername: recipient.Username,
		Content:           in.Content,
		Category:          in.Category,
		IsPublic:          in.IsPublic,
	}
	if err := s.takeRepo.Create(ctx, take); err != nil {
		return nil, svcErr.Map(err)
	}

	s.invalidateUserCaches(ctx, recipient.Username, sender)
	s.publishAsync(notify.TakeCreated(recipient.Username, sender, take.ID))

	return take, nil
}

// PostTake stores a public-feed post by a known sender. Public posts carry no
// recipient, so unlike CreateTake there is nobody to notify.
func (s *Service) PostTake(ctx context.Context, in PostTakeInput) (*db.Take, error) {
	s.appCtx.Logger.Debug("PostTake called", "sender", in.Sender)

	sender, err := s.userRepo.FindByUsername(ctx, in.Sender)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		return nil, svcErr.Map(err)
	}

	take := &db.Take{
		ID:       uuid.NewString(),
		Sender:   sender.Username,
		Content:  in.Content,
		Category: in.Category,
		IsPublic: true,
	}
	if err := s.takeRepo.Create(ctx, take); err != nil {
		return nil, svcErr.Map(err)
	}

	s.invalidateUserCaches(ctx, "", sender.Username)

	return take, nil
}

// React applies one reaction toggle on behalf of username.
//
// Toggle semantics, one ledger entry per user:
//   - no prior entry: entry added, counter up, outcome "added"
//   - same kind again: entry removed, counter down, outcome "removed"
//   - different kind: entry switched, counts moved, outcome "added"
//
// A toggle that loses a ledger race is reapplied once; a second loss surfaces
// as Conflict. A reaction-added intent goes to the take's sender on "added".
func (s *Service) React(ctx context.Context, takeID string, kind db.ReactionKind, username string) (ReactOutcome, error) {
	s.appCtx.Logger.Debug("React called", "take", takeID, "kind", kind, "user", username)

	if !kind.IsValid() {
		return "", svcErr.InvalidArgument("invalid reaction type")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", svcErr.NotFound("user not found")
		}
		return "", svcErr.Map(err)
	}

	take, err := s.takeRepo.FindByID(ctx, takeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", svcErr.NotFound("hot take not found")
		}
		return "", svcErr.Map(err)
	}

	added, err := s.takeRepo.React(ctx, takeID, user.Username, kind)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race on the ledger; re-read state and reapply once
		s.appCtx.Logger.Warn("reaction toggle raced, retrying", "take", takeID, "user", user.Username)
		added, err = s.takeRepo.React(ctx, takeID, user.Username, kind)
	}
	if err != nil {
		return "", svcErr.Map(err)
	}

	s.invalidateUserCaches(ctx, "", take.Sender)

	if !added {
		return OutcomeRemoved, nil
	}

	s.publishAsync(notify.ReactionAdded(take.Sender, user.Username, take.ID, kind))
	return OutcomeAdded, nil
}

// ListInbound returns takes addressed to username that they have not reacted
// to yet. The unseen filter is part of the query, so it runs before ranking
// and pagination and pages come back full.
func (s *Service) ListInbound(ctx context.Context, username string, req ListRequest) (*TakePage, error) {
	user, err := s.resolveViewer(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ListFilter{
		Scope:    repository.ScopeInbound,
		Username: user.Username,
		Mode:     req.Mode,
		UnseenBy: user.Username,
		Page:     pagination.Normalize(req.Page, req.Limit, pagination.DefaultUserLimit),
	})
}

// ListMine returns takes sent by username.
func (s *Service) ListMine(ctx context.Context, username string, req ListRequest) (*TakePage, error) {
	user, err := s.resolveViewer(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ListFilter{
		Scope:    repository.ScopeMine,
		Username: user.Username,
		Mode:     req.Mode,
		Page:     pagination.Normalize(req.Page, req.Limit, pagination.DefaultUserLimit),
	})
}

// ListPublic returns the public feed.
func (s *Service) ListPublic(ctx context.Context, viewer string, req ListRequest) (*TakePage, error) {
	if _, err := s.resolveViewer(ctx, viewer); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ListFilter{
		Scope: repository.ScopePublic,
		Mode:  req.Mode,
		Page:  pagination.Normalize(req.Page, req.Limit, pagination.DefaultPublicLimit),
	})
}

// ListPreviouslyReactedTo returns takes username has reacted to. The newest
// mode here orders by updated_at: recency of interaction, not authorship.
func (s *Service) ListPreviouslyReactedTo(ctx context.Context, username string, req ListRequest) (*TakePage, error) {
	user, err := s.resolveViewer(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ListFilter{
		Scope:    repository.ScopeReactedBy,
		Username: user.Username,
		Mode:     req.Mode,
		Page:     pagination.Normalize(req.Page, req.Limit, pagination.DefaultUserLimit),
	})
}

// GetByID fetches a single take.
func (s *Service) GetByID(ctx context.Context, id string) (*db.Take, error) {
	take, err := s.takeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("hot take not found")
		}
		return nil, svcErr.Map(err)
	}
	return take, nil
}

// DeleteTake removes a take and its reaction ledger.
func (s *Service) DeleteTake(ctx context.Context, id string) error {
	take, err := s.takeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("hot take not found")
		}
		return svcErr.Map(err)
	}

	if err := s.takeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("hot take not found")
		}
		return svcErr.Map(err)
	}

	s.invalidateUserCaches(ctx, take.RecipientUsername, take.Sender)
	return nil
}

// GetStats returns a user's aggregate footprint.
// Cache-first strategy:
//  1. Attempts to read the stats blob from Redis (takes:stats:<user>).
//  2. On miss, aggregates in the DB via repository.Stats.
//  3. Stores the result back with a 1h TTL.
func (s *Service) GetStats(ctx context.Context, username string) (*UserStats, error) {
	user, err := s.resolveViewer(ctx, username)
	if err != nil {
		return nil, err
	}

	key := s.appCtx.RedisCache.KeyForStats(user.Username)
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var stats UserStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	received, posted, reactions, err := s.takeRepo.Stats(ctx, user.Username)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	stats := &UserStats{
		TakesReceived:  received,
		TakesPosted:    posted,
		TotalReactions: reactions,
	}
	if payload, err := json.Marshal(stats); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, payload, time.Hour)
	}

	return stats, nil
}

// CountReceived returns how many takes were addressed to username,
// cache-first like GetStats.
func (s *Service) CountReceived(ctx context.Context, username string) (int64, error) {
	user, err := s.resolveViewer(ctx, username)
	if err != nil {
		return 0, err
	}

	key := s.appCtx.RedisCache.KeyForReceivedCount(user.Username)
	if count, ok, _ := s.appCtx.RedisCache.GetCount(ctx, key); ok {
		return count, nil
	}

	count, err := s.takeRepo.CountForRecipient(ctx, user.Username)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)

	return count, nil
}

// CreateMany bulk-inserts takes in one all-or-nothing batch. Recipients are
// stored verbatim from the `to` field without user validation; this path
// exists for bulk seeding, not for the single-create invariants.
func (s *Service) CreateMany(ctx context.Context, inputs []CreateTakeInput) ([]db.Take, error) {
	takes := make([]db.Take, 0, len(inputs))
	for _, in := range inputs {
		takes = append(takes, db.Take{
			ID:                uuid.NewString(),
			Sender:            in.Sender,
			RecipientUsername: in.To,
			Content:           in.Content,
			Category:          in.Category,
			IsPublic:          in.IsPublic,
		})
	}

	if err := s.takeRepo.CreateMany(ctx, takes); err != nil {
		s.appCtx.Logger.Error("bulk insert failed", "count", len(takes), "err", err)
		return nil, svcErr.Map(err)
	}
	return takes, nil
}

// TakeURL builds the shareable URL for a take.
func (s *Service) TakeURL(id string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(strings.ToLower(id)))
}

func (s *Service) list(ctx context.Context, filter repository.ListFilter) (*TakePage, error) {
	items, total, err := s.takeRepo.List(ctx, filter)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &TakePage{Takes: items, TotalCount: total}, nil
}

func (s *Service) resolveViewer(ctx context.Context, username string) (*db.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// invalidateUserCaches drops cached counts touched by a write. Recomputed
// lazily on next read.
func (s *Service) invalidateUserCaches(ctx context.Context, recipient, sender string) {
	keys := make([]string, 0, 3)
	if recipient != "" {
		keys = append(keys,
			s.appCtx.RedisCache.KeyForReceivedCount(recipient),
			s.appCtx.RedisCache.KeyForStats(recipient),
		)
	}
	if sender != "" {
		keys = append(keys, s.appCtx.RedisCache.KeyForStats(sender))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.appCtx.RedisCache.Del(ctx, keys...); err != nil {
		s.appCtx.Logger.Warn("cache invalidation failed", "err", err)
	}
}

// publishAsync hands an intent to the notifier without blocking the mutation
// that raised it. Delivery failures are logged and never surfaced.
func (s *Service) publishAsync(intent notify.Intent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.appCtx.Notifier.Publish(ctx, intent); err != nil {
			s.appCtx.Logger.Error("failed to publish notification intent",
				"recipient", intent.RecipientUsername, "err", err)
		}
	}()
}
