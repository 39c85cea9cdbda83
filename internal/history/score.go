package history

import (
	"slices"
	"strings"

	"github.com/tinytelemetry/wingo-live/internal/model"
)

// Accuracy is the track record of size calls.
type Accuracy struct {
	Hits  int
	Total int
}

// Rate returns the hit ratio, or false when nothing has been scored yet.
func (a Accuracy) Rate() (float64, bool) {
	if a.Total == 0 {
		return 0, false
	}
	return float64(a.Hits) / float64(a.Total), true
}

// ScoreSizes replays snapshots in commit order and scores each size call
// against the next draw that appears. A snapshot whose Seq is below one
// already seen in the same session was issued earlier and committed late, so
// it is skipped rather than treated as a draw.
func ScoreSizes(snaps []model.Snapshot) Accuracy {
	ordered := slices.Clone(snaps)
	slices.SortStableFunc(ordered, func(a, b model.Snapshot) int { return a.CommittedAt.Compare(b.CommittedAt) })

	var (
		acc    Accuracy
		prev   model.Snapshot
		primed bool
		maxSeq = map[string]uint64{}
		seen   = map[string]bool{}
	)
	for _, next := range ordered {
		if next.Seq < maxSeq[next.Session] {
			continue
		}
		maxSeq[next.Session] = next.Seq

		if !primed {
			prev, primed = next, true
			markSeen(seen, next)
			continue
		}
		if next.LatestNumber.Valid && newDraw(prev, next) && !seen[next.LatestIssue] {
			if prev.Size != "" {
				acc.Total++
				if strings.EqualFold(prev.Size, model.SizeOf(next.LatestNumber.Value)) {
					acc.Hits++
				}
			}
		}
		markSeen(seen, next)
		prev = next
	}
	return acc
}

func markSeen(seen map[string]bool, s model.Snapshot) {
	if s.LatestIssue != "" {
		seen[s.LatestIssue] = true
	}
}

func newDraw(prev, next model.Snapshot) bool {
	if prev.LatestIssue != "" || next.LatestIssue != "" {
		return prev.LatestIssue != next.LatestIssue
	}
	return prev.LatestNumber != next.LatestNumber
}
