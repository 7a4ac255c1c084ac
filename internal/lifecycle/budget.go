// Package lifecycle implements the storage lifecycle component (spec.md
// §4.L): startup disk-usage accounting, per-case storage/staleness
// summaries, and the archive/strip-embeddings/purge-archived maintenance
// operations.
package lifecycle

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"
)

const (
	bytesPerGiB = 1 << 30

	warnThresholdFraction = 0.90
	infoThresholdFraction = 0.70

	staleAfterDays = 180
)

// DirSize sums the size of every regular file under root, skipping
// symlinks, per spec.md §4.L. Walk errors for individual entries are
// skipped rather than aborting the whole sum, mirroring the teacher's
// getDirSize tolerance for partially-missing paths.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// CheckStartupBudget sums file sizes under dataRoot and logs at info
// (>=70% of budgetGB) or warn (>=90%) per spec.md §4.L. Called once at
// process startup.
func CheckStartupBudget(dataRoot string, budgetGB float64) error {
	used, err := DirSize(dataRoot)
	if err != nil {
		return err
	}
	budget := int64(budgetGB * bytesPerGiB)
	if budget <= 0 {
		return nil
	}
	fraction := float64(used) / float64(budget)

	switch {
	case fraction >= warnThresholdFraction:
		slog.Warn("storage budget nearly exhausted",
			"used_bytes", used, "budget_gb", budgetGB, "fraction", fraction)
	case fraction >= infoThresholdFraction:
		slog.Info("storage budget usage",
			"used_bytes", used, "budget_gb", budgetGB, "fraction", fraction)
	}
	return nil
}

// CaseStorageSummary is the per-case result of a storage summary query
// (spec.md §4.L, exposed as the get_storage_summary tool).
type CaseStorageSummary struct {
	CaseID       string
	Bytes        int64
	DaysSinceUse int // min(days since last search, days since last ingest); -1 if neither ever happened
	Stale        bool
	LastSearchAt int64
	LastIngestAt int64
}

// activityReader is the subset of *casehandle.Handle the summary needs;
// declared locally so this package doesn't force every caller through a
// live Handle just to read two timestamps.
type activityReader interface {
	LastSearchAt() (int64, bool, error)
	LastIngestAt() (int64, bool, error)
}

// Summarize computes one case's storage/staleness summary. caseDir is the
// case's on-disk directory (registry.Registry.CaseDir); h is the case's
// open handle.
func Summarize(caseID, caseDir string, h activityReader, now time.Time) (CaseStorageSummary, error) {
	bytes, err := DirSize(caseDir)
	if err != nil {
		return CaseStorageSummary{}, err
	}

	lastSearch, hasSearch, err := h.LastSearchAt()
	if err != nil {
		return CaseStorageSummary{}, err
	}
	lastIngest, hasIngest, err := h.LastIngestAt()
	if err != nil {
		return CaseStorageSummary{}, err
	}

	summary := CaseStorageSummary{
		CaseID:       caseID,
		Bytes:        bytes,
		LastSearchAt: lastSearch,
		LastIngestAt: lastIngest,
		DaysSinceUse: -1,
	}

	mostRecent := int64(0)
	haveAny := false
	if hasSearch && lastSearch > mostRecent {
		mostRecent = lastSearch
		haveAny = true
	}
	if hasIngest && lastIngest > mostRecent {
		mostRecent = lastIngest
		haveAny = true
	}
	if haveAny {
		days := int(now.Unix()-mostRecent) / 86400
		summary.DaysSinceUse = days
		summary.Stale = days >= staleAfterDays
	}
	return summary, nil
}
