// Package database owns the GORM connection and schema migration for the
// catalog sync engine. Per-entity repositories live in subpackages
// (sessions, products, prices, stocks, synclogs); each binds a *gorm.DB and
// exposes WithTx so batch operations can run inside one transaction.
package database
