package similarity

import "math"

// Algorithm identifies which scorer produced a score.
type Algorithm string

const (
	AlgorithmExact       Algorithm = "exact"
	AlgorithmJaccard     Algorithm = "jaccard"
	AlgorithmLevenshtein Algorithm = "levenshtein"
	AlgorithmNGram       Algorithm = "ngram"
)

// NGramSize is the phrase window used by the n-gram scorer.
const NGramSize = 3

// ScoreConfig tunes scorer selection and the Jaccard length-bias correction.
// Zero values fall back to the documented defaults; set MinWordLen to a
// negative value to disable the word-length filter entirely.
type ScoreConfig struct {
	// MinWordLen drops words with <= MinWordLen runes before set comparison.
	// Default 3 (suppresses stop-word noise); some call sites use 2.
	MinWordLen int
	// BiasExponent is k in (min/max)^k, penalizing size mismatch. Default 0.3.
	BiasExponent float64
	// ShortTextThreshold routes texts whose normalized length is below it to
	// the edit-distance scorer. Default 100 characters.
	ShortTextThreshold int
}

func (c ScoreConfig) withDefaults() ScoreConfig {
	if c.MinWordLen == 0 {
		c.MinWordLen = 3
	}
	if c.BiasExponent == 0 {
		c.BiasExponent = 0.3
	}
	if c.ShortTextThreshold == 0 {
		c.ShortTextThreshold = 100
	}
	return c
}

// Score compares two raw texts and reports similarity in [0,100] together
// with the algorithm that produced it. Identical normalized texts always
// score 100 regardless of which scorer would otherwise run. Otherwise the
// scorer is selected by length: edit distance for short texts, where Jaccard
// over-rewards small shared vocabularies, and length-biased Jaccard for the
// rest.
func Score(a, b string, cfg ScoreConfig) (int, Algorithm) {
	cfg = cfg.withDefaults()
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 100, AlgorithmExact
	}
	if len([]rune(na)) < cfg.ShortTextThreshold || len([]rune(nb)) < cfg.ShortTextThreshold {
		return editSimilarity(na, nb), AlgorithmLevenshtein
	}
	return jaccardSimilarity(na, nb, cfg), AlgorithmJaccard
}

// Jaccard scores two texts by distinct-word overlap: |A∩B| / |A∪B| scaled to
// a percentage, multiplied by the length-bias factor (min/max)^k so that a
// tiny document fully contained in a much larger one does not score as high
// as two documents of comparable size. Either set empty scores 0.
func Jaccard(a, b string, cfg ScoreConfig) int {
	cfg = cfg.withDefaults()
	return jaccardSimilarity(Normalize(a), Normalize(b), cfg)
}

func jaccardSimilarity(na, nb string, cfg ScoreConfig) int {
	wa := tokenSet(na, cfg.MinWordLen)
	wb := tokenSet(nb, cfg.MinWordLen)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	intersection := 0
	union := len(wb)
	for w := range wa {
		if _, ok := wb[w]; ok {
			intersection++
		} else {
			union++
		}
	}

	smaller := min(len(wa), len(wb))
	larger := max(len(wa), len(wb))
	bias := math.Pow(float64(smaller)/float64(larger), cfg.BiasExponent)

	raw := float64(intersection) / float64(union) * 100 * bias
	return clampScore(int(math.Round(raw)))
}

// EditSimilarity converts normalized Levenshtein distance between the
// normalized texts into a similarity percentage:
// 100 * (1 - distance/maxLen). Two empty texts are defined as identical.
func EditSimilarity(a, b string) int {
	return editSimilarity(Normalize(a), Normalize(b))
}

func editSimilarity(na, nb string) int {
	ra, rb := []rune(na), []rune(nb)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 100
	}
	d := levenshtein(ra, rb)
	return clampScore(int(math.Round(100 * (1 - float64(d)/float64(maxLen)))))
}

// levenshtein computes edit distance with a single-row DP.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// NGram scores contiguous word n-gram overlap: shared n-grams over the larger
// n-gram count, as a percentage. n <= 0 uses NGramSize. Texts too short to
// produce a single n-gram score 0.
func NGram(a, b string, n int) int {
	if n <= 0 {
		n = NGramSize
	}
	ga := ngrams(Tokenize(a, 0), n)
	gb := ngrams(Tokenize(b, 0), n)
	larger := max(len(ga), len(gb))
	if larger == 0 || len(ga) == 0 || len(gb) == 0 {
		return 0
	}
	shared := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			shared++
		}
	}
	return clampScore(int(math.Round(100 * float64(shared) / float64(larger))))
}

func ngrams(words []string, n int) map[string]struct{} {
	set := make(map[string]struct{})
	for i := 0; i+n <= len(words); i++ {
		var b []byte
		for k := i; k < i+n; k++ {
			if k > i {
				b = append(b, ' ')
			}
			b = append(b, words[k]...)
		}
		set[string(b)] = struct{}{}
	}
	return set
}

// clampScore bounds a score to the closed interval [0,100]. Correction
// factors can push intermediate ratios past the edges.
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
