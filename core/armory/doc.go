// Package armory provides the client for the remote account-profile API.
//
// It wraps the game service's REST endpoints behind a small interface so the
// reconciliation engine never deals with HTTP or the remote payload shapes.
// The nested account summary (account -> wow_accounts -> characters) is
// flattened into CharacterSummary values on ingestion.
//
// # Client Interface
//
// The Client interface abstracts the remote service, making it easy to mock
// profile interactions for unit testing (see core/armory/mocks).
//
// # Error Classes
//
//   - ErrUnauthorized: the remote service rejected the bearer token.
//   - ErrUnavailable: transport failure or unexpected status.
//
// A failed character-detail fetch is reported as an error but callers are
// expected to degrade to "guild unknown" rather than abort.
//
// # Usage
//
//	client, err := armory.NewClient(config)
//	roster, err := client.FetchAccountRoster(ctx, token)
package armory
