// Package models defines the persisted entities of the roster feature.
//
// Characters and guilds are identified by their natural composite key
// (name, realm slug, region) rather than by the surrogate id. The composite
// unique indexes back the upsert-by-natural-key operations in the store.
//
// Name matching relies on the schema's case-insensitive collation, which
// matches the case-folded comparison the identity resolver performs in
// memory. Stored names keep the remote service's canonical casing.
package models
