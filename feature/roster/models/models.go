package models

import "time"

// User is an account holder whose character roster is synced from the
// armory. Token issuance lives in the auth subsystem; this service only
// reads the stored token.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BattleTag   string    `gorm:"size:64;uniqueIndex" json:"battle_tag"`
	AccessToken string    `gorm:"size:2048" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Guild is a persisted guild, unique per (name, realm_slug, region).
// Guilds are created on first sight and never deleted: characters belonging
// to other users may still reference them.
type Guild struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex:idx_guild_identity,priority:1" json:"name"`
	RealmSlug string    `gorm:"size:64;uniqueIndex:idx_guild_identity,priority:2" json:"realm_slug"`
	Region    string    `gorm:"size:8;uniqueIndex:idx_guild_identity,priority:3" json:"region"`
	Faction   *string   `gorm:"size:16" json:"faction,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Character is a persisted character, unique per (name, realm_slug,
// region). The remote service enforces unique names per realm per region,
// so the composite key is globally unique.
//
// UserID is nullable: a character can exist in the store without a linked
// user. GuildRank is nullable and not populated by the reconciliation
// engine.
type Character struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex:idx_character_identity,priority:1" json:"name"`
	RealmSlug string    `gorm:"size:64;uniqueIndex:idx_character_identity,priority:2" json:"realm_slug"`
	Region    string    `gorm:"size:8;uniqueIndex:idx_character_identity,priority:3" json:"region"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	GuildID   *uint     `gorm:"index" json:"guild_id,omitempty"`
	GuildRank *int      `json:"guild_rank,omitempty"`
	Level     int       `json:"level"`
	ClassID   int       `json:"class_id"`
	RaceID    int       `json:"race_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
