// Package importers drives full feed ingestion runs against the sync engine.
//
// # Architecture
//
// The feed pipeline follows a simple flow:
//
//	Feed File → Parser → FeedProduct → Pipeline → sync.Engine → Catalog
//
// The parser turns the ERP's exported JSON feed into neutral feed records.
// The pipeline opens a session, chunks the records into ordered batches,
// submits them one at a time, and finalizes the session, producing the run's
// audit log entry.
package importers
