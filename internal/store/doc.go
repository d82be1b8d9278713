// Package store provides the SQLite-backed generation ledger.
//
// Every generate run is recorded with the hash of the API it was given, the
// generator version and, per emitted namespace file, the content hash and
// whether the file was written. The ledger answers "which input produced
// this file" and "what changed between runs".
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (logical clock), never timestamps
//   - All queries include: ORDER BY seq, then a BINARY-collated key
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Outputs reference their run
//   - One open connection: SQLite has a single writer
package store
