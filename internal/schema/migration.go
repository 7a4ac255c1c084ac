package schema

import (
	"fmt"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// Store is the minimal subset of the KV substrate migrations need: reading
// and writing metadata keys and iterating a column family's keys by prefix.
// Defined here (rather than importing internal/kv) to keep this package
// free of a dependency on the concrete storage engine.
type Store interface {
	Get(cf, key string) ([]byte, bool, error)
	Put(cf, key string, value []byte) error
	PrefixIter(cf, prefix string) (map[string][]byte, error)
}

// MigrationStep upgrades a store from one schema version to the next. Steps
// must be idempotent: re-running a step that already applied must be a
// no-op, not an error, so a retried migration after a partial failure is
// safe.
type MigrationStep func(s Store) error

// steps maps "apply this to go from version N to N+1" in order; steps[0]
// upgrades v0 -> v1, steps[1] upgrades v1 -> v2, and so on.
var steps = []MigrationStep{
	migrateV0ToV1,
}

// migrateV0ToV1 is a placeholder for the only migration registered so far:
// this build's v1 schema needs no structural change from a v0 store (v0
// stores, if any exist, already use the same key encodings), so this step
// only guards against the legacy/unified embedding key conflict described
// in migrateLegacyEmbeddingKeys.
func migrateV0ToV1(s Store) error {
	return migrateLegacyEmbeddingKeys(s)
}

// migrateLegacyEmbeddingKeys resolves the embedding-key Open Question: a
// case store from a prior build may hold per-embedder keys such as
// `emb_dense:{chunk_id}` alongside or instead of the unified
// `emb:{chunk_id}` record this build reads. Only `emb_dense:` keys are
// scanned. If the store holds any legacy dense key and any unified key
// (whether or not they name the same chunk), migration refuses to guess
// which is authoritative and aborts with MigrationRequired rather than
// silently picking one. If only legacy keys are present, they are safe to leave as-is;
// read paths in this build only ever look at `emb:*`, so a case with purely
// legacy keys simply behaves as if it has no embeddings until re-ingested
// or migrated, which is a degraded-but-safe outcome, not data loss.
func migrateLegacyEmbeddingKeys(s Store) error {
	legacyDense, err := s.PrefixIter("embeddings", "emb_dense:")
	if err != nil {
		return fmt.Errorf("scanning legacy dense embedding keys: %w", err)
	}
	if len(legacyDense) == 0 {
		return nil
	}

	unified, err := s.PrefixIter("embeddings", "emb:")
	if err != nil {
		return fmt.Errorf("scanning unified embedding keys: %w", err)
	}
	if len(unified) > 0 {
		return caseerrors.MigrationRequired("")
	}
	return nil
}

// Migrate applies every registered step from storedVersion up to
// CurrentSchemaVersion in order. The caller is responsible for having
// already taken the `<name>.bak.v{n}` backup copy before calling Migrate;
// on any step's failure, Migrate returns immediately without writing the
// new version, leaving the backup intact and the store at storedVersion.
func Migrate(s Store, storedVersion int) error {
	if storedVersion > CurrentSchemaVersion {
		return caseerrors.FutureSchemaVersion(storedVersion, CurrentSchemaVersion)
	}
	for v := storedVersion; v < CurrentSchemaVersion; v++ {
		if v >= len(steps) {
			return fmt.Errorf("no migration step registered for v%d -> v%d", v, v+1)
		}
		if err := steps[v](s); err != nil {
			return fmt.Errorf("migration v%d -> v%d failed: %w", v, v+1, err)
		}
	}
	return nil
}
