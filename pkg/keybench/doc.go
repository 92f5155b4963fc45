// Package keybench measures PostgreSQL primary key types.
//
// A benchmark inserts rows keyed by one [KeyType] into a dedicated table and
// appends every generated key to a data file. A later run selects a random
// sample of those keys back. Only the time spent in the database is counted.
package keybench
