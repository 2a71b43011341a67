// Package assignment selects a responsible agent for a request using
// strategy-driven heuristics.
package assignment

import (
	"hash/fnv"
	"sort"
	"strings"

	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/repository"
)

// Assignment strategies.
const (
	StrategyRoundRobin  = "round_robin"
	StrategySkillMatch  = "skill_match"
	StrategyGeographic  = "geographic"
	StrategyAutoBalance = "auto_balance"
)

// Confidence composition. A perfect specialty+area match on the least
// loaded candidate reaches 1.0; a bare round-robin pick stays near base.
const (
	confidenceBase      = 0.50
	confidenceSpecialty = 0.25
	confidenceArea      = 0.15
	confidenceWorkload  = 0.10
)

// pick is a strategy outcome: the chosen candidate plus the signals that
// informed the choice.
type pick struct {
	candidate        ports.Candidate
	specialtyMatched bool
	areaMatched      bool
}

// IsValidStrategy reports whether name is a known heuristic strategy.
func IsValidStrategy(name string) bool {
	switch name {
	case StrategyRoundRobin, StrategySkillMatch, StrategyGeographic, StrategyAutoBalance:
		return true
	}
	return false
}

// selectCandidate dispatches to the named strategy. The pool must be
// non-empty; callers check that first. Each strategy is a pure function of
// its inputs so it stays independently testable.
func selectCandidate(strategy string, req repository.Request, pool []ports.Candidate) pick {
	// Stable ordering makes every strategy deterministic for a given pool.
	sorted := append([]ports.Candidate(nil), pool...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID.String() < sorted[j].ID.String() })

	var chosen ports.Candidate
	switch strategy {
	case StrategySkillMatch:
		chosen = pickBySkill(req, sorted)
	case StrategyGeographic:
		chosen = pickByArea(req, sorted)
	case StrategyAutoBalance:
		chosen = pickByWorkload(req, sorted)
	default:
		chosen = pickRoundRobin(req, sorted)
	}

	return pick{
		candidate:        chosen,
		specialtyMatched: specialtyOverlap(req.Product, chosen.Specialties) > 0,
		areaMatched:      servesArea(req.Area, chosen.ServiceAreas),
	}
}

// pickRoundRobin spreads requests over the pool by hashing the request id,
// so repeated calls for the same request are stable.
func pickRoundRobin(req repository.Request, pool []ports.Candidate) ports.Candidate {
	h := fnv.New32a()
	h.Write([]byte(req.ID.String()))
	return pool[int(h.Sum32())%len(pool)]
}

// pickBySkill maximizes keyword overlap between the request product and the
// candidate specialties; workload breaks ties.
func pickBySkill(req repository.Request, pool []ports.Candidate) ports.Candidate {
	best := pool[0]
	bestOverlap := specialtyOverlap(req.Product, best.Specialties)
	for _, c := range pool[1:] {
		overlap := specialtyOverlap(req.Product, c.Specialties)
		if overlap > bestOverlap || (overlap == bestOverlap && c.Workload < best.Workload) {
			best, bestOverlap = c, overlap
		}
	}
	return best
}

// pickByArea prefers candidates serving the request's area, least loaded
// first; falls back to pure workload when nobody serves it.
func pickByArea(req repository.Request, pool []ports.Candidate) ports.Candidate {
	var inArea []ports.Candidate
	for _, c := range pool {
		if servesArea(req.Area, c.ServiceAreas) {
			inArea = append(inArea, c)
		}
	}
	if len(inArea) == 0 {
		return pickByWorkload(req, pool)
	}
	return pickByWorkload(req, inArea)
}

// pickByWorkload picks the least-loaded candidate; specialty match breaks ties.
func pickByWorkload(req repository.Request, pool []ports.Candidate) ports.Candidate {
	best := pool[0]
	for _, c := range pool[1:] {
		if c.Workload < best.Workload {
			best = c
			continue
		}
		if c.Workload == best.Workload &&
			specialtyOverlap(req.Product, c.Specialties) > specialtyOverlap(req.Product, best.Specialties) {
			best = c
		}
	}
	return best
}

// specialtyOverlap counts keyword overlap between the product text and the
// candidate's specialties.
func specialtyOverlap(product string, specialties []string) int {
	p := strings.ToLower(product)
	if p == "" {
		return 0
	}
	overlap := 0
	for _, s := range specialties {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && (strings.Contains(p, s) || strings.Contains(s, p)) {
			overlap++
		}
	}
	return overlap
}

func servesArea(area string, serviceAreas []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(area))
	if normalized == "" {
		return false
	}
	for _, a := range serviceAreas {
		if strings.ToLower(strings.TrimSpace(a)) == normalized {
			return true
		}
	}
	return false
}

// confidence derives the composite assignment confidence from the match
// signals and the candidate's relative workload within the pool.
func confidence(p pick, pool []ports.Candidate) float64 {
	score := confidenceBase
	if p.specialtyMatched {
		score += confidenceSpecialty
	}
	if p.areaMatched {
		score += confidenceArea
	}

	maxLoad := 0
	for _, c := range pool {
		if c.Workload > maxLoad {
			maxLoad = c.Workload
		}
	}
	if maxLoad == 0 {
		score += confidenceWorkload
	} else {
		score += confidenceWorkload * (1 - float64(p.candidate.Workload)/float64(maxLoad))
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
