package roster

import (
	"strings"

	"armory-sync/core/armory"
	"armory-sync/feature/roster/models"
)

// Key is the natural composite identity of a character or guild.
// The stored Name keeps the remote service's canonical casing; comparisons
// always go through Normalized.
type Key struct {
	Name      string
	RealmSlug string
	Region    string
}

// Normalized returns the comparison form of the key with the name
// case-folded. Two keys identify the same entity iff their normalized
// forms are equal.
func (k Key) Normalized() Key {
	k.Name = strings.ToLower(k.Name)
	return k
}

// CharacterKey computes the natural key of a remote character summary.
func CharacterKey(c armory.CharacterSummary) Key {
	return Key{Name: c.Name, RealmSlug: c.RealmSlug, Region: c.Region}
}

// GuildKey computes the natural key of a remote guild summary.
func GuildKey(g armory.GuildSummary) Key {
	return Key{Name: g.Name, RealmSlug: g.RealmSlug, Region: g.Region}
}

// StoredCharacterKey computes the natural key of a persisted character.
func StoredCharacterKey(c models.Character) Key {
	return Key{Name: c.Name, RealmSlug: c.RealmSlug, Region: c.Region}
}

// DedupeGuilds removes duplicate guild summaries within a single run.
// First seen wins on duplicate natural keys, so the preserved casing and
// faction come from the first character that reported the guild.
func DedupeGuilds(guilds []armory.GuildSummary) []armory.GuildSummary {
	seen := make(map[Key]struct{}, len(guilds))
	unique := make([]armory.GuildSummary, 0, len(guilds))

	for _, g := range guilds {
		key := GuildKey(g).Normalized()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, g)
	}

	return unique
}

// BuildGuildIDMap maps normalized guild natural keys to persisted guild
// ids. The result depends only on the set of rows, not their order.
func BuildGuildIDMap(guilds []models.Guild) map[Key]uint {
	ids := make(map[Key]uint, len(guilds))
	for _, g := range guilds {
		key := Key{Name: g.Name, RealmSlug: g.RealmSlug, Region: g.Region}
		ids[key.Normalized()] = g.ID
	}
	return ids
}
