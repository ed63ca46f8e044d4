package qdrant

import (
	"fmt"
	"sort"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type fusedCandidate struct {
	outlet domain.Outlet
	score  float64
}

// fuseRelativeScore min-max normalizes each result list to [0,1] and blends
// them as alpha*dense + (1-alpha)*sparse.
func fuseRelativeScore(dense, sparse []queryPoint, alpha float64) []domain.Outlet {
	acc := make(map[string]fusedCandidate, len(dense)+len(sparse))
	order := make([]string, 0, len(dense)+len(sparse))

	addList := func(points []queryPoint, weight float64) {
		if weight <= 0 {
			return
		}
		normalized := normalizeScores(points)
		for i, p := range points {
			key := pointKey(p)
			candidate, seen := acc[key]
			if !seen {
				candidate.outlet = outletFromPayload(p.Payload)
				order = append(order, key)
			}
			candidate.score += weight * normalized[i]
			acc[key] = candidate
		}
	}

	addList(dense, alpha)
	addList(sparse, 1-alpha)

	out := make([]fusedCandidate, 0, len(order))
	for _, key := range order {
		out = append(out, acc[key])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})

	outlets := make([]domain.Outlet, 0, len(out))
	for _, c := range out {
		outlets = append(outlets, c.outlet)
	}
	return outlets
}

func normalizeScores(points []queryPoint) []float64 {
	out := make([]float64, len(points))
	if len(points) == 0 {
		return out
	}
	lo, hi := points[0].Score, points[0].Score
	for _, p := range points[1:] {
		lo = min(lo, p.Score)
		hi = max(hi, p.Score)
	}
	for i, p := range points {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = (p.Score - lo) / (hi - lo)
	}
	return out
}

func pointKey(p queryPoint) string {
	if p.ID != nil {
		return fmt.Sprintf("%v", p.ID)
	}
	return fmt.Sprintf("%s|%s", getStringPayload(p.Payload, "name"), getStringPayload(p.Payload, "address"))
}

func trimOutlets(outlets []domain.Outlet, limit int) []domain.Outlet {
	if limit <= 0 || len(outlets) <= limit {
		return outlets
	}
	return outlets[:limit]
}
