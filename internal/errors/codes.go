// Package errors provides structured error handling for the case intelligence engine.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: not-found errors
//   - 2XX: invalid-input errors
//   - 3XX: schema/version errors
//   - 4XX: resource/tier errors
//   - 5XX: concurrency errors
//   - 6XX: external/IO/inference errors
//   - 7XX: cancellation
//   - 8XX: corruption (always fatal)
package errors

// Kind classifies an error the way spec.md §7 does, independent of the
// human-readable code. Handlers branch on Kind; codes are for logs/messages.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindSchemaMismatch      Kind = "SCHEMA_MISMATCH"
	KindResourceExhausted   Kind = "RESOURCE_EXHAUSTED"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
	KindExternalFailure     Kind = "EXTERNAL_FAILURE"
	KindCancelled           Kind = "CANCELLED"
	KindCorrupted           Kind = "CORRUPTED"
)

// Severity defines error severity levels.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by kind.
const (
	// Not found (100-199)
	ErrCodeCaseNotFound      = "ERR_101_CASE_NOT_FOUND"
	ErrCodeDocumentNotFound  = "ERR_102_DOCUMENT_NOT_FOUND"
	ErrCodeChunkNotFound     = "ERR_103_CHUNK_NOT_FOUND"
	ErrCodeEntityNotFound    = "ERR_104_ENTITY_NOT_FOUND"
	ErrCodeCitationNotFound  = "ERR_105_CITATION_NOT_FOUND"
	ErrCodeEmbeddingNotFound = "ERR_106_EMBEDDING_NOT_FOUND"
	ErrCodeFileNotFound      = "ERR_107_FILE_NOT_FOUND"
	ErrCodeWatchNotFound     = "ERR_108_WATCH_NOT_FOUND"

	// Invalid input (200-299)
	ErrCodeUnsupportedFormat       = "ERR_201_UNSUPPORTED_FORMAT"
	ErrCodeMalformedCitation       = "ERR_202_MALFORMED_CITATION"
	ErrCodeDuplicateDocument       = "ERR_203_DUPLICATE_DOCUMENT"
	ErrCodeInvalidLicense          = "ERR_204_INVALID_LICENSE_FORMAT"
	ErrCodeInvalidQuery            = "ERR_205_INVALID_QUERY"
	ErrCodeCaseNotActive           = "ERR_206_CASE_NOT_ACTIVE"
	ErrCodeInvalidStatusTransition = "ERR_207_INVALID_STATUS_TRANSITION"

	// Schema (300-399)
	ErrCodeFutureSchemaVersion = "ERR_301_FUTURE_SCHEMA_VERSION"
	ErrCodeMigrationRequired   = "ERR_302_MIGRATION_REQUIRED"
	ErrCodeLegacyKeyConflict   = "ERR_303_LEGACY_KEY_CONFLICT"

	// Resource/tier (400-499)
	ErrCodeTierLimitExceeded = "ERR_401_TIER_LIMIT_EXCEEDED"
	ErrCodeStorageBudget     = "ERR_402_STORAGE_BUDGET_EXCEEDED"

	// Concurrency (500-599)
	ErrCodeLockContention = "ERR_501_LOCK_CONTENTION"
	ErrCodeWatchShutdown  = "ERR_502_WATCH_SHUTDOWN_IN_PROGRESS"

	// External / IO / inference (600-699)
	ErrCodeCaseDbOpenFailed   = "ERR_601_CASE_DB_OPEN_FAILED"
	ErrCodeStoreIO            = "ERR_602_STORE_IO"
	ErrCodeEmbedderNotLoaded  = "ERR_603_EMBEDDER_NOT_LOADED"
	ErrCodeModelNotDownloaded = "ERR_604_MODEL_NOT_DOWNLOADED"
	ErrCodeInferenceFailed    = "ERR_605_INFERENCE_FAILED"
	ErrCodeBm25IndexEmpty     = "ERR_606_BM25_INDEX_EMPTY"

	// Cancellation (700-799)
	ErrCodeCancelled        = "ERR_701_CANCELLED"
	ErrCodeDeadlineExceeded = "ERR_702_DEADLINE_EXCEEDED"

	// Corrupted (800-899), always fatal
	ErrCodeOrphanEmbedding    = "ERR_801_ORPHAN_EMBEDDING"
	ErrCodeMissingProvenance  = "ERR_802_MISSING_PROVENANCE"
	ErrCodeInvariantViolation = "ERR_803_INVARIANT_VIOLATION"
)

// kindFromCode extracts the Kind from an error code's numeric prefix.
func kindFromCode(code string) Kind {
	if len(code) < 7 {
		return KindExternalFailure
	}
	switch code[4] {
	case '1':
		return KindNotFound
	case '2':
		return KindInvalidInput
	case '3':
		return KindSchemaMismatch
	case '4':
		return KindResourceExhausted
	case '5':
		return KindConcurrencyConflict
	case '6':
		return KindExternalFailure
	case '7':
		return KindCancelled
	case '8':
		return KindCorrupted
	default:
		return KindExternalFailure
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if kindFromCode(code) == KindCorrupted {
		return SeverityFatal
	}
	switch code {
	case ErrCodeFutureSchemaVersion, ErrCodeStorageBudget:
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode reports whether an error code represents a retryable condition.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeLockContention, ErrCodeStoreIO, ErrCodeInferenceFailed:
		return true
	default:
		return false
	}
}
