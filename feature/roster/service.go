package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"armory-sync/core/archive"
	"armory-sync/core/armory"
	"armory-sync/feature/roster/models"

	"go.uber.org/zap"
)

// Result summarizes a completed reconciliation run.
type Result struct {
	UserID     uint   `json:"user_id"`
	BattleTag  string `json:"battle_tag"`
	Characters int    `json:"characters"`
}

// Service drives profile reconciliation: fetch the remote roster, resolve
// guilds, upsert guilds then characters, and clean up characters the user
// no longer owns.
type Service struct {
	store    Store
	client   armory.Client
	archiver archive.Archiver
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewService creates a new roster service. archiver may be nil to disable
// run-report archiving.
func NewService(store Store, client armory.Client, archiver archive.Archiver, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		client:   client,
		archiver: archiver,
		logger:   logger,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// lockUser serializes runs per user. The cleanup read-then-delete is not
// transactionally isolated from a concurrent run's writes, so two runs for
// the same user must never overlap. Runs for distinct users are independent.
//
// Entries are never evicted, so the map holds one mutex per user id ever
// reconciled. User counts are small relative to the map's footprint; if that
// changes, entries need reference counting before they can be removed safely.
func (s *Service) lockUser(userID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Reconcile brings the stored roster for one user in line with the armory.
//
// Failure classes: ErrUserNotFound, ErrUnauthorized, ErrUpstreamUnavailable
// and ErrPersistence are fatal to the run. Per-character detail fetches and
// per-row cleanup deletes are best-effort; their failures are logged only.
func (s *Service) Reconcile(ctx context.Context, userID uint) (*Result, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	started := time.Now()

	// Phase 1: load the user and their token. Nothing has been written yet,
	// so every failure up to the character upsert leaves the store intact.
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
	}

	l := s.logger.With(zap.Uint("user_id", user.ID), zap.String("battle_tag", user.BattleTag))

	// Phase 2: account roster.
	summaries, err := s.client.FetchAccountRoster(ctx, user.AccessToken)
	if err != nil {
		if errors.Is(err, armory.ErrUnauthorized) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	l.Info("Fetched account roster", zap.Int("characters", len(summaries)))

	// Phase 3: per-character detail. Guild membership is taken strictly from
	// each character's own detail fetch; guildOf[i] belongs to summaries[i].
	// A failed fetch degrades to "guild unknown" and never aborts the run.
	guildOf := make([]*armory.GuildSummary, len(summaries))
	for i, ch := range summaries {
		guild, err := s.client.FetchCharacterDetail(ctx, user.AccessToken, ch.RealmSlug, ch.Name)
		if err != nil {
			l.Warn("Character detail fetch failed, guild left unset",
				zap.String("character", ch.Name),
				zap.String("realm", ch.RealmSlug),
				zap.Error(err))
			continue
		}
		guildOf[i] = guild
	}

	// Phase 4: guild batch. A partial guild map could link characters to a
	// wrong or missing guild, so a failed batch fails the whole run before
	// any character is touched.
	var discovered []armory.GuildSummary
	for _, g := range guildOf {
		if g != nil {
			discovered = append(discovered, *g)
		}
	}
	unique := DedupeGuilds(discovered)

	rows := make([]models.Guild, 0, len(unique))
	for _, g := range unique {
		row := models.Guild{Name: g.Name, RealmSlug: g.RealmSlug, Region: g.Region}
		if g.Faction != "" {
			faction := g.Faction
			row.Faction = &faction
		}
		rows = append(rows, row)
	}

	guildIDs := map[Key]uint{}
	if len(rows) > 0 {
		persisted, err := s.store.UpsertGuilds(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
		}
		guildIDs = BuildGuildIDMap(persisted)
	}

	// Phase 5+6: link and upsert characters. Ownership is last-write-wins:
	// a transferred character follows whoever reconciled most recently.
	characters := make([]models.Character, 0, len(summaries))
	for i, ch := range summaries {
		row := models.Character{
			Name:      ch.Name,
			RealmSlug: ch.RealmSlug,
			Region:    ch.Region,
			UserID:    &user.ID,
			Level:     ch.Level,
			ClassID:   ch.ClassID,
			RaceID:    ch.RaceID,
		}
		if g := guildOf[i]; g != nil {
			if id, ok := guildIDs[GuildKey(*g).Normalized()]; ok {
				guildID := id
				row.GuildID = &guildID
			}
		}
		characters = append(characters, row)
	}

	if len(characters) > 0 {
		if err := s.store.UpsertCharacters(ctx, characters); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
		}
	}

	// Phase 7: orphan cleanup, best-effort. Only rows owned by this user are
	// candidates; natural-key overlap with other users' characters is never
	// touched because the listing is scoped by owner.
	deleted := s.cleanupOrphans(ctx, l, user.ID, summaries)

	result := &Result{
		UserID:     user.ID,
		BattleTag:  user.BattleTag,
		Characters: len(characters),
	}
	l.Info("Reconciliation complete",
		zap.Int("characters", result.Characters),
		zap.Int("guilds", len(unique)),
		zap.Int("deleted", deleted))

	if s.archiver != nil {
		report := archive.RunReport{
			UserID:     user.ID,
			BattleTag:  user.BattleTag,
			Characters: result.Characters,
			Guilds:     len(unique),
			Deleted:    deleted,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if err := s.archiver.StoreRunReport(ctx, report); err != nil {
			l.Warn("Failed to archive run report", zap.Error(err))
		}
	}

	return result, nil
}

// cleanupOrphans deletes stored characters owned by the user whose natural
// key is absent from the current roster. Failures are logged and skipped;
// cleanup never affects the run's outcome.
func (s *Service) cleanupOrphans(ctx context.Context, l *zap.Logger, userID uint, summaries []armory.CharacterSummary) int {
	current := make(map[Key]struct{}, len(summaries))
	for _, ch := range summaries {
		current[CharacterKey(ch).Normalized()] = struct{}{}
	}

	owned, err := s.store.ListCharactersByOwner(ctx, userID)
	if err != nil {
		l.Warn("Failed to list owned characters, skipping cleanup", zap.Error(err))
		return 0
	}

	deleted := 0
	for _, ch := range owned {
		key := StoredCharacterKey(ch)
		if _, ok := current[key.Normalized()]; ok {
			continue
		}
		if err := s.store.DeleteCharacter(ctx, userID, key); err != nil {
			l.Warn("Failed to delete orphaned character",
				zap.String("character", ch.Name),
				zap.String("realm", ch.RealmSlug),
				zap.Error(err))
			continue
		}
		deleted++
	}

	return deleted
}
