// Package matcher assigns anonymous file rows to roster players by fuzzy
// name similarity. It is a pure function over explicit inputs: the claimed
// set is threaded through the iteration locally, so repeated calls with the
// same snapshot always produce the same assignment.
package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/maxviazov/gps-performance-service/internal/model"
)

// Options hold the matching heuristics. The thresholds are deployment
// tunables, not invariants; defaults reflect the values that worked for
// Latin/Cyrillic rosters so far.
type Options struct {
	// MinAcceptScore is the lowest similarity that still auto-assigns.
	MinAcceptScore int
	// OverlapBoostScore is the similarity floor applied when the file name
	// and the roster name share a recognizable token. Transliterated or
	// abbreviated names often fail pure edit distance but share a word.
	OverlapBoostScore int
	// MinOverlapTokenLen is the shortest token considered for the boost.
	MinOverlapTokenLen int
}

// DefaultOptions returns the stock thresholds (accept ≥50, boost to 60).
func DefaultOptions() Options {
	return Options{MinAcceptScore: 50, OverlapBoostScore: 60, MinOverlapTokenLen: 3}
}

// Match scores every file name against the not-yet-claimed roster and
// returns one result per row, in row order. Greedy first-seen exclusivity:
// once a roster player wins a row, later rows cannot auto-claim them.
func Match(fileNames []string, roster []model.Player, opts Options) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(fileNames))
	claimed := make(map[int64]bool, len(roster))

	for i, raw := range fileNames {
		res := model.MatchResult{RowIndex: i, FilePlayerName: raw, Band: model.BandNone}

		var best *model.Player
		bestScore := -1
		for j := range roster {
			p := roster[j]
			if claimed[p.ID] {
				continue
			}
			score := Similarity(raw, p, opts)
			if score > bestScore {
				bestScore = score
				best = &roster[j]
			}
		}

		if best != nil && bestScore >= opts.MinAcceptScore {
			res.MatchedPlayer = best
			res.SimilarityScore = bestScore
			res.Band = band(bestScore)
			claimed[best.ID] = true
		} else if bestScore > 0 {
			// Keep the score for reviewer context even when unmatched.
			res.SimilarityScore = bestScore
		}
		results = append(results, res)
	}
	return results
}

// Similarity scores a raw file name against one roster player on a 0–100
// scale. Four candidate pairs are tried and the best one wins: full name,
// last name only, first name only, and reversed "last first" order.
func Similarity(fileName string, p model.Player, opts Options) int {
	file := Normalize(fileName)
	if file == "" {
		return 0
	}
	first := Normalize(p.FirstName)
	last := Normalize(p.LastName)
	full := strings.TrimSpace(first + " " + last)
	reversed := strings.TrimSpace(last + " " + first)

	score := 0
	for _, candidate := range []string{full, last, first, reversed} {
		if candidate == "" {
			continue
		}
		if s := editSimilarity(file, candidate); s > score {
			score = s
		}
	}

	if hasTokenOverlap(file, full, opts.MinOverlapTokenLen) && score < opts.OverlapBoostScore {
		score = opts.OverlapBoostScore
	}
	return score
}

// editSimilarity converts Levenshtein distance to a percentage:
// round((1 - dist/maxLen) * 100).
func editSimilarity(a, b string) int {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	s := int(math.Round((1 - float64(dist)/float64(maxLen)) * 100))
	if s < 0 {
		return 0
	}
	return s
}

// hasTokenOverlap reports whether any sufficiently long word of a is a
// substring of (or contains) any sufficiently long word of b.
func hasTokenOverlap(a, b string, minLen int) bool {
	for _, wa := range strings.Fields(a) {
		if len([]rune(wa)) < minLen {
			continue
		}
		for _, wb := range strings.Fields(b) {
			if len([]rune(wb)) < minLen {
				continue
			}
			if strings.Contains(wa, wb) || strings.Contains(wb, wa) {
				return true
			}
		}
	}
	return false
}

func band(score int) model.MatchBand {
	switch {
	case score >= 80:
		return model.BandHigh
	case score >= 60:
		return model.BandMedium
	case score >= 50:
		return model.BandLow
	default:
		return model.BandNone
	}
}

// bandRank orders bands for reviewer presentation; unmatched rows go last.
var bandRank = map[model.MatchBand]int{
	model.BandHigh:   0,
	model.BandMedium: 1,
	model.BandLow:    2,
	model.BandNone:   3,
}

// SortForReview orders results by confidence band (high first, unmatched
// last), keeping row order within a band. The input slice is not modified.
func SortForReview(results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return bandRank[out[i].Band] < bandRank[out[j].Band]
	})
	return out
}
