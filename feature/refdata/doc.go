// Package refdata imports static reference data from the armory.
//
// Playable classes, playable races and realms change only with game
// releases, so this is a one-shot fetch-then-upsert triggered from the CLI
// rather than part of per-user reconciliation. Classes and races are keyed
// by their remote ids; realms by (slug, region).
package refdata
