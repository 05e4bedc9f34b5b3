// Package archive persists reconciliation run reports to object storage.
//
// Every successful reconciliation run can be archived as a small JSON
// document, giving an audit trail of what was synced and when. Archiving is
// strictly best-effort: a failed write is logged by the caller and never
// affects the run's outcome.
//
// # Layout
//
// Reports are stored under runs/<user-id>/<unix-timestamp>.json so repeated
// runs for the same user accumulate instead of overwriting.
//
// # Usage
//
//	archiver, err := archive.NewArchiver(config)
//	_ = archiver.StoreRunReport(ctx, report)
package archive
