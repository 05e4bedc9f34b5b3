// Package roster implements the profile reconciliation engine.
//
// It keeps the local store of characters and guilds eventually consistent
// with the remote account-profile API, which is the source of truth for
// what a user owns.
//
// # Pipeline
//
// A run for one user proceeds in dependent phases:
//
//  1. Load the user and their stored token.
//  2. Fetch the account roster. An auth rejection aborts the run with the
//     store untouched.
//  3. Fetch per-character detail to discover guild membership. Failures
//     degrade to "guild unknown" and never abort the run.
//  4. Dedupe and upsert guilds as one batch; a failure here aborts before
//     any character write so no character links against a partial map.
//  5. Link each character to its guild using that character's own detail
//     result, never list position.
//  6. Upsert characters as one batch, claiming ownership.
//  7. Delete owned characters missing from the current roster (best-effort).
//
// # Identity
//
// Characters and guilds are matched by natural composite key (name, realm
// slug, region) with case-folded name comparison. Stored names keep the
// remote canonical casing.
//
// # Components
//
//   - Service: the orchestrator, with per-user run serialization.
//   - Store: the persistence boundary (GORM/MySQL implementation).
//   - Handler: exposes POST /users/:id/reconcile.
//   - Loader: registers the feature with the application.
package roster
