// Package watch implements folder watch/sync per spec.md §4.K: a
// persisted registry of watched folders, filesystem-event debouncing,
// schedule-driven sync triggers, and the hash-compare sync algorithm that
// reconciles a folder's files against a case's ingested documents.
package watch

import "time"

// ScheduleKind selects how a Watch's sync is triggered.
type ScheduleKind string

const (
	// ScheduleOnChange syncs immediately (after debouncing) on any
	// filesystem event under the watched folder.
	ScheduleOnChange ScheduleKind = "OnChange"
	// ScheduleInterval syncs every IntervalSeconds, checked by the
	// background ticker.
	ScheduleInterval ScheduleKind = "Interval"
	// ScheduleDaily syncs once per day at DailyAt (local time, "HH:MM").
	ScheduleDaily ScheduleKind = "Daily"
	// ScheduleManual never syncs automatically; only an explicit sync_folder
	// call runs it.
	ScheduleManual ScheduleKind = "Manual"
)

// Watch is one watched-folder registration, persisted in watches.json.
type Watch struct {
	ID                string       `json:"id"`
	CaseID            string       `json:"case_id"`
	Folder            string       `json:"folder"`
	Recursive         bool         `json:"recursive"`
	ExtensionFilter   []string     `json:"extension_filter,omitempty"` // empty means no filter
	AutoRemoveDeleted bool         `json:"auto_remove_deleted"`
	Schedule          ScheduleKind `json:"schedule"`
	IntervalSeconds   int          `json:"interval_seconds,omitempty"`
	DailyAt           string       `json:"daily_at,omitempty"` // "HH:MM", local time
	Enabled           bool         `json:"enabled"`
	CreatedAt         int64        `json:"created_at"`
	LastSyncAt        int64        `json:"last_sync_at,omitempty"`
}

// matchesExtension reports whether ext passes w's extension filter.
func (w *Watch) matchesExtension(ext string) bool {
	if len(w.ExtensionFilter) == 0 {
		return true
	}
	for _, e := range w.ExtensionFilter {
		if e == ext {
			return true
		}
	}
	return false
}

// dueAt reports whether, given now and the watch's schedule, a
// schedule-driven sync is due. OnChange and Manual watches are never due
// here; they are driven by filesystem events or explicit calls instead.
func (w *Watch) dueAt(now time.Time) bool {
	if !w.Enabled {
		return false
	}
	switch w.Schedule {
	case ScheduleInterval:
		if w.IntervalSeconds <= 0 {
			return false
		}
		return w.LastSyncAt == 0 || now.Unix()-w.LastSyncAt >= int64(w.IntervalSeconds)
	case ScheduleDaily:
		return dailyDue(w.DailyAt, w.LastSyncAt, now)
	default:
		return false
	}
}

// dailyDue reports whether a Daily-scheduled sync at "HH:MM" is due: the
// clock has passed that time today and the last sync was before today's
// occurrence of it.
func dailyDue(at string, lastSync int64, now time.Time) bool {
	hh, mm, ok := parseHHMM(at)
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	if now.Before(today) {
		return false
	}
	return lastSync < today.Unix()
}

func parseHHMM(s string) (hh, mm int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	h, okH := digits2(s[0:2])
	m, okM := digits2(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func digits2(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
