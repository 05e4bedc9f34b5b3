package roster

import (
	"context"
	"errors"
	"fmt"

	"armory-sync/feature/roster/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary for roster reconciliation.
type Store interface {
	// GetUser returns the user or ErrUserNotFound.
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	// UpsertGuilds writes the batch keyed by natural key and returns the
	// persisted rows with authoritative ids.
	UpsertGuilds(ctx context.Context, guilds []models.Guild) ([]models.Guild, error)
	// UpsertCharacters writes the batch keyed by natural key, setting the
	// owner on every row.
	UpsertCharacters(ctx context.Context, characters []models.Character) error
	// ListCharactersByOwner returns every character owned by the user.
	ListCharactersByOwner(ctx context.Context, userID uint) ([]models.Character, error)
	// DeleteCharacter removes the single row matching (owner, natural key).
	DeleteCharacter(ctx context.Context, userID uint, key Key) error
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &user, nil
}

func (s *gormStore) UpsertGuilds(ctx context.Context, guilds []models.Guild) ([]models.Guild, error) {
	if len(guilds) == 0 {
		return nil, nil
	}

	tx := s.db.WithContext(ctx)

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "realm_slug"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"faction", "updated_at"}),
	}).Create(&guilds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert guilds: %w", err)
	}

	// MySQL does not report ids for rows that hit the duplicate-key path,
	// so re-read the batch to get authoritative ids.
	keys := make([][]any, 0, len(guilds))
	for _, g := range guilds {
		keys = append(keys, []any{g.Name, g.RealmSlug, g.Region})
	}

	var persisted []models.Guild
	err = tx.Where("(name, realm_slug, region) IN ?", keys).Find(&persisted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read back upserted guilds: %w", err)
	}

	return persisted, nil
}

func (s *gormStore) UpsertCharacters(ctx context.Context, characters []models.Character) error {
	if len(characters) == 0 {
		return nil
	}

	// guild_rank is deliberately absent from the update set: it is owned by
	// the guild-roster import, not by profile reconciliation.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}, {Name: "realm_slug"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "guild_id", "level", "class_id", "race_id", "updated_at",
		}),
	}).Create(&characters).Error
	if err != nil {
		return fmt.Errorf("failed to upsert characters: %w", err)
	}

	return nil
}

func (s *gormStore) ListCharactersByOwner(ctx context.Context, userID uint) ([]models.Character, error) {
	var characters []models.Character
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&characters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list characters for user %d: %w", userID, err)
	}
	return characters, nil
}

func (s *gormStore) DeleteCharacter(ctx context.Context, userID uint, key Key) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND realm_slug = ? AND region = ?",
			userID, key.Name, key.RealmSlug, key.Region).
		Delete(&models.Character{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete character %s-%s: %w", key.Name, key.RealmSlug, err)
	}
	return nil
}
