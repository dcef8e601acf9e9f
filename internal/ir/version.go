package ir

// Version constants recorded with every journaled run.
const (
	// JournalVersion is the journal record schema version.
	JournalVersion = "1"

	// EngineVersion is the sdbind engine version.
	EngineVersion = "0.1.0"
)
