// Package store provides snapshot persistence backends for the product
// catalog. Each backend holds one serialized product list under a single
// logical key, mirroring the catalog.SnapshotStore contract: loading an
// absent snapshot yields an empty list, and writes replace the snapshot
// wholesale.
package store

// snapshotKey is the single logical key every backend stores the product
// list under.
const snapshotKey = "products"

// Backend names accepted by the store configuration.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)
