// Package database provides connection pool management for the optional
// PostgreSQL trade journal. The simulator itself is fully in-memory; the
// journal only persists trade events for after-the-fact analysis.
package database
