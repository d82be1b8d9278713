package ir

// Version constants for the IR schema and generator.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// GeneratorVersion is the routegen version recorded in the ledger.
	GeneratorVersion = "0.1.0"
)
