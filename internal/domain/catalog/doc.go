// Package catalog holds the platform-neutral catalog model shared by the
// source and destination sides of a migration run.
//
// Source entities are read-only snapshots fetched from the source store.
// Destination entities carry destination-assigned identifiers; a source and a
// destination entity are never related by identifier equality, only by
// equivalence key (see Normalize and PathResolver).
package catalog
