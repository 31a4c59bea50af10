package constants

// ResultStatus is the canonical status for one (document, configuration) row.
type ResultStatus string

// Stable values (store/export these exact strings).
const (
	StatusSuccess   ResultStatus = "SUCCESS"    // a rule matched and validated
	StatusNoMatch   ResultStatus = "NO_MATCH"   // chain exhausted, default value used
	StatusReadError ResultStatus = "READ_ERROR" // document text could not be supplied
)
