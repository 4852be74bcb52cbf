// Package sync implements the catalog synchronization engine: a
// session-based batch-ingestion pipeline that reconciles the periodic ERP
// product and price feed into the catalog store.
//
// A feed driver opens a session (at most one active per company), submits
// batches one at a time, and finalizes the session, which writes an
// immutable audit row and invalidates the company's stock cache. Each batch
// runs as one database transaction, but a failure on a single product inside
// a batch never aborts the batch: the record is classified, recorded on the
// session, and processing continues.
//
// Sync-sourced writes only ever touch the feed-owned field group of a
// product. Catalog-curated fields (images, tags, visibility and friends)
// belong to merchandising and survive every sync untouched.
package sync
