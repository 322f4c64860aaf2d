package app

import (
	"math"
	"strings"
	"unicode"

	"stay_spotter/internal/domain"
)

// DefaultMatchThreshold is the similarity score above which two listings
// from different providers are treated as the same physical property.
// It is a tunable business rule, not an invariant; DEDUPE_THRESHOLD
// overrides it at deploy time.
const DefaultMatchThreshold = 0.7

// Dedupe merges two providers' result sets, resolving cross-provider
// duplicates. Listing names are compared with cosine similarity over a
// TF-IDF representation fit on the union of both sets; a pair scoring
// above threshold is a match, and the higher-priced side of a match is
// dropped so the user sees the cheaper option. Unmatched listings pass
// through unchanged, which also makes the merge idempotent.
//
// Pair comparison is O(|A|*|B|); result sets are tens of listings, so
// this is not a scalability path.
func Dedupe(a, b []domain.Stay, threshold float64) []domain.Stay {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	model := fitTFIDF(stayNames(a), stayNames(b))
	vecA := model.vectors(stayNames(a))
	vecB := model.vectors(stayNames(b))

	dropA := make([]bool, len(a))
	dropB := make([]bool, len(b))
	for i := range a {
		for j := range b {
			if dropA[i] || dropB[j] {
				continue
			}
			if cosine(vecA[i], vecB[j]) <= threshold {
				continue
			}
			// Matched pair: keep the cheaper listing. An unparseable price
			// loses the comparison so we never drop a priced listing in
			// favor of an unpriced one.
			pa, okA := PriceValue(a[i].Price)
			pb, okB := PriceValue(b[j].Price)
			switch {
			case okA && okB && pb < pa:
				dropA[i] = true
			case okA && okB:
				dropB[j] = true
			case okB:
				dropA[i] = true
			default:
				dropB[j] = true
			}
		}
	}

	out := make([]domain.Stay, 0, len(a)+len(b))
	for i := range a {
		if !dropA[i] {
			out = append(out, a[i])
		}
	}
	for j := range b {
		if !dropB[j] {
			out = append(out, b[j])
		}
	}
	return out
}

// PriceValue extracts the numeric amount from a provider-formatted price
// string by keeping only its digits ("€ 1.234" -> 1234). ok is false
// when the text carries no digits at all.
func PriceValue(price string) (int, bool) {
	n, seen := 0, false
	for _, r := range price {
		if unicode.IsDigit(r) {
			n = n*10 + int(r-'0')
			seen = true
		}
	}
	return n, seen
}

// ---- TF-IDF over listing names ----

type tfidfModel struct {
	idf  map[string]float64
	docs int
}

func stayNames(stays []domain.Stay) []string {
	names := make([]string, len(stays))
	for i, s := range stays {
		names[i] = s.Name
	}
	return names
}

func tokenize(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fitTFIDF builds the shared vocabulary over every name from both
// providers, with smoothed inverse document frequency so terms seen in
// every name still carry a little weight.
func fitTFIDF(nameSets ...[]string) *tfidfModel {
	df := map[string]int{}
	docs := 0
	for _, names := range nameSets {
		for _, name := range names {
			docs++
			seen := map[string]bool{}
			for _, tok := range tokenize(name) {
				if !seen[tok] {
					seen[tok] = true
					df[tok]++
				}
			}
		}
	}
	idf := make(map[string]float64, len(df))
	for tok, n := range df {
		idf[tok] = math.Log(float64(1+docs)/float64(1+n)) + 1
	}
	return &tfidfModel{idf: idf, docs: docs}
}

func (m *tfidfModel) vectors(names []string) []map[string]float64 {
	out := make([]map[string]float64, len(names))
	for i, name := range names {
		vec := map[string]float64{}
		for _, tok := range tokenize(name) {
			vec[tok] += m.idf[tok]
		}
		out[i] = vec
	}
	return out
}

// cosine is symmetric and lands in [0,1] since all weights are
// non-negative.
func cosine(u, v map[string]float64) float64 {
	var dot, nu, nv float64
	for tok, w := range u {
		nu += w * w
		if w2, ok := v[tok]; ok {
			dot += w * w2
		}
	}
	for _, w := range v {
		nv += w * w
	}
	if nu == 0 || nv == 0 {
		return 0
	}
	return dot / (math.Sqrt(nu) * math.Sqrt(nv))
}
