// Package merger folds per-source canonical transaction lists into one
// time-ordered ledger, collapsing records that represent the same real-world
// transaction. Merging is idempotent: re-merging an already merged result
// changes nothing.
package merger

import (
	"sort"
	"strings"
	"time"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
	"ledgerunify/internal/timeutils"
)

// DefaultTolerance is the dedup time window used when the caller does not
// configure one. Source variants disagree on the right value, so treat it as
// a tunable, not an authority.
const DefaultTolerance = time.Minute

// Merger combines and deduplicates transaction lists.
type Merger struct {
	tolerance time.Duration
	logger    logging.Logger
}

// New creates a Merger with the given dedup tolerance window. A non-positive
// tolerance falls back to DefaultTolerance; a nil logger falls back to the
// shared default.
func New(tolerance time.Duration, logger logging.Logger) *Merger {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Merger{tolerance: tolerance, logger: logger}
}

// Merge combines the given lists into one ledger sorted ascending by
// timestamp. Timestamp ties order by source platform lexically; remaining
// ties keep input order (the sort is stable). Callers fold new imports into
// storage by passing the existing ledger as the first list.
func (m *Merger) Merge(lists ...[]models.Transaction) []models.Transaction {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	combined := make([]models.Transaction, 0, total)
	for _, list := range lists {
		combined = append(combined, list...)
	}

	sortLedger(combined)

	merged := m.dedup(combined)
	// A later duplicate that wins an earlier record's slot carries its later
	// timestamp into that position; restore the ordering guarantee.
	sortLedger(merged)

	m.logger.Info("Merged transaction lists",
		logging.Field{Key: "lists", Value: len(lists)},
		logging.Field{Key: "input", Value: total},
		logging.Field{Key: "output", Value: len(merged)},
		logging.Field{Key: "removed", Value: total - len(merged)})

	return merged
}

// dedup walks the sorted list, comparing each record against already kept
// records on the same calendar day. The richer of two duplicates wins the
// slot.
func (m *Merger) dedup(sorted []models.Transaction) []models.Transaction {
	kept := make([]models.Transaction, 0, len(sorted))

	for _, candidate := range sorted {
		duplicateAt := -1
		// Scan back across the whole calendar day: the reference rule
		// applies day-wide, the content rule enforces its own tolerance.
		for j := len(kept) - 1; j >= 0; j-- {
			if !timeutils.SameCalendarDay(candidate.Timestamp, kept[j].Timestamp) {
				break
			}
			if m.isDuplicate(kept[j], candidate) {
				duplicateAt = j
				break
			}
		}

		if duplicateAt == -1 {
			kept = append(kept, candidate)
			continue
		}

		incumbent := kept[duplicateAt]
		if preferOver(candidate, incumbent) {
			// A richer record wins the slot, but an existing category
			// assignment survives re-import: duplicates arriving from a
			// fresh statement are unclassified.
			if candidate.Category == "" && incumbent.Category != "" {
				candidate.Category = incumbent.Category
				candidate.CategoryConfidence = incumbent.CategoryConfidence
				candidate.CategoryProvenance = incumbent.CategoryProvenance
			}
			kept[duplicateAt] = candidate
		}
		m.logger.Debug("Collapsed duplicate transaction",
			logging.Field{Key: "id", Value: incumbent.ID},
			logging.Field{Key: "duplicate_id", Value: candidate.ID},
			logging.Field{Key: "reference", Value: incumbent.ReferenceNumber})
	}

	return kept
}

// isDuplicate applies the pairwise dedup rule. Records on the same calendar
// day qualify as duplicates when:
//  1. both carry a reference number and the references match exactly, or
//  2. a reference is absent on either side and the timestamps are within
//     tolerance while amount and counterparty agree (exact amount equality,
//     no fuzziness on anything).
//
// Similar-looking records failing both checks stay distinct; there is
// deliberately no fuzzy description matching.
func (m *Merger) isDuplicate(a, b models.Transaction) bool {
	if !timeutils.SameCalendarDay(a.Timestamp, b.Timestamp) {
		return false
	}

	if a.HasReference() && b.HasReference() {
		return a.ReferenceNumber == b.ReferenceNumber
	}

	if !timeutils.WithinTolerance(a.Timestamp, b.Timestamp, m.tolerance) {
		return false
	}
	if !a.Amount.Equal(b.Amount) {
		return false
	}
	return normalizeParty(a.Counterparty) == normalizeParty(b.Counterparty)
}

// preferOver reports whether the challenger should replace the incumbent when
// the two are duplicates. A record with a reference number is never discarded
// in favor of one without; beyond that the record with more populated
// optional fields wins, and the incumbent (first seen) wins ties.
func preferOver(challenger, incumbent models.Transaction) bool {
	if incumbent.HasReference() != challenger.HasReference() {
		return challenger.HasReference()
	}
	return challenger.RichnessScore() > incumbent.RichnessScore()
}

func normalizeParty(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func sortLedger(list []models.Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.Before(list[j].Timestamp)
		}
		return list[i].SourcePlatform < list[j].SourcePlatform
	})
}
