package similarity

import "sort"

// Match is one ranked corpus hit. Index points into the corpus slice passed
// to Rank; callers join it back to their document records.
type Match struct {
	Index     int
	Score     int
	Algorithm Algorithm
}

// RankConfig controls filtering and truncation for one ranking call site.
// The thresholds used to be scattered constants in the call sites; they are
// explicit parameters here, with named defaults per use case below.
type RankConfig struct {
	Score    ScoreConfig
	MinScore int // keep matches with score >= MinScore (zero scores never pass)
	Limit    int // max results after filtering; 0 = unbounded
}

// ScanDefaults is the config for the full corpus scan that follows persisting
// a novel document.
func ScanDefaults() RankConfig {
	return RankConfig{MinScore: 5}
}

// PreviewDefaults is the config for the duplicate-preview scan, which is
// stricter because it runs without charging a credit.
func PreviewDefaults() RankConfig {
	return RankConfig{MinScore: 20}
}

// MatchDefaults casts the widest net, for per-document match listings.
func MatchDefaults() RankConfig {
	return RankConfig{MinScore: 3, Score: ScoreConfig{MinWordLen: 2}}
}

// Rank scores candidate against every corpus entry, keeps entries at or above
// MinScore, sorts descending by score with corpus order breaking ties, and
// truncates to Limit. The corpus is never mutated.
func Rank(candidate string, corpus []string, cfg RankConfig) []Match {
	matches := make([]Match, 0, len(corpus))
	for i, doc := range corpus {
		score, alg := Score(candidate, doc, cfg.Score)
		if score == 0 || score < cfg.MinScore {
			continue
		}
		matches = append(matches, Match{Index: i, Score: score, Algorithm: alg})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if cfg.Limit > 0 && len(matches) > cfg.Limit {
		matches = matches[:cfg.Limit]
	}
	return matches
}
