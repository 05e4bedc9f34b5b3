package armory

// CharacterSummary is the flattened view of one character from the account
// profile. The remote payload nests characters under sub-accounts; the
// client flattens it on ingestion so callers never branch on payload shape.
type CharacterSummary struct {
	// Name is the character name in the remote service's canonical casing.
	Name string
	// RealmSlug identifies the realm the character lives on.
	RealmSlug string
	// ClassID is the remote playable class id.
	ClassID int
	// RaceID is the remote playable race id.
	RaceID int
	// Level is the character level.
	Level int
	// Region is the region the account was queried in.
	Region string
}

// GuildSummary identifies the guild a character belongs to. It is derived
// from a character-detail fetch, not from the account summary.
type GuildSummary struct {
	Name      string
	RealmSlug string
	Region    string
	// Faction is the guild faction (e.g. HORDE, ALLIANCE), empty when the
	// detail payload omits it.
	Faction string
}

// ClassRef is a playable class from the static data endpoints.
type ClassRef struct {
	ID   int
	Name string
}

// RaceRef is a playable race from the static data endpoints.
type RaceRef struct {
	ID   int
	Name string
}

// RealmRef is a realm from the static data endpoints.
type RealmRef struct {
	Slug   string
	Name   string
	Region string
}
