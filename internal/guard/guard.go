// Package guard verifies that generated text introduces no facts absent
// from the ground-truth block it was asked to restate. All checks are pure
// string work; the guard performs no external calls.
package guard

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxResponseLength is the character ceiling on generated candidates.
// Replies longer than this correlate with invented elaboration.
const MaxResponseLength = 500

// Promotional superlatives the bot must never produce.
var bannedMarketingWords = []string{
	"tuyệt vời", "hoàn hảo", "đỉnh cao", "xuất sắc", "tốt nhất",
	"ưu đãi", "khuyến mãi", "giảm giá", "sale", "hot deal",
	"siêu phẩm", "bom tấn", "cực đỉnh", "xịn sò", "đỉnh của chóp",
}

// Filler sign-off phrases the bot must never produce.
var bannedClosingPhrases = []string{
	"hy vọng", "chúc bạn", "mong rằng", "cảm ơn bạn đã",
	"nếu cần hỗ trợ", "liên hệ chúng tôi", "đừng ngại",
}

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// Capitalized word, optionally followed by digits and further
	// capitalized words: the shape of a product name ("iPhone 15 Pro Max").
	namePattern = regexp.MustCompile(`[A-Z][a-zA-Z]*(?:\s+\d+)?(?:\s+[A-Z][a-z]+)*`)
)

// Report records the outcome of the five independent checks for one
// candidate. It is ephemeral; nothing persists it.
type Report struct {
	NumbersValid  bool
	NamesValid    bool
	MarketingFree bool
	ClosingFree   bool
	LengthValid   bool
	Passed        bool
}

// IsValid reports whether candidate faithfully restates source.
func IsValid(source, candidate string) bool {
	return Check(source, candidate).Passed
}

// Check runs all five checks and returns the per-check verdicts.
func Check(source, candidate string) Report {
	r := Report{
		NumbersValid:  numbersSubset(source, candidate),
		NamesValid:    namesSubset(source, candidate),
		MarketingFree: !containsBanned(candidate, bannedMarketingWords),
		ClosingFree:   !containsBanned(candidate, bannedClosingPhrases),
		LengthValid:   len([]rune(candidate)) <= MaxResponseLength,
	}
	r.Passed = r.NumbersValid && r.NamesValid && r.MarketingFree && r.ClosingFree && r.LengthValid
	return r
}

// numbersSubset checks that every numeric token in candidate also appears
// in source. Tokens are normalized ("15.0" and "15" are the same number)
// but units are not interpreted: "12" and "12000000" stay distinct facts.
func numbersSubset(source, candidate string) bool {
	sourceNumbers := make(map[string]struct{})
	for _, n := range extractNumbers(source) {
		sourceNumbers[n] = struct{}{}
	}
	for _, n := range extractNumbers(candidate) {
		if _, ok := sourceNumbers[n]; !ok {
			return false
		}
	}
	return true
}

func namesSubset(source, candidate string) bool {
	sourceNames := extractNames(source)
	for _, name := range extractNames(candidate) {
		if !matchesAny(name, sourceNames) {
			return false
		}
	}
	return true
}

func matchesAny(name string, known []string) bool {
	for _, k := range known {
		if strings.Contains(name, k) || strings.Contains(k, name) || similar(name, k) {
			return true
		}
	}
	return false
}

func containsBanned(text string, banned []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range banned {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func extractNumbers(text string) []string {
	var numbers []string
	for _, raw := range numberPattern.FindAllString(text, -1) {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			numbers = append(numbers, raw)
			continue
		}
		if value == float64(int64(value)) {
			numbers = append(numbers, strconv.FormatInt(int64(value), 10))
		} else {
			numbers = append(numbers, strconv.FormatFloat(value, 'f', -1, 64))
		}
	}
	return numbers
}

// extractNames pulls product-name-like token runs, lowercased. Very short
// matches are noise, not names.
func extractNames(text string) []string {
	var names []string
	for _, m := range namePattern.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if len([]rune(m)) > 3 {
			names = append(names, strings.ToLower(m))
		}
	}
	return names
}

// similar treats two strings as the same name when their edit distance is
// under 30% of the longer one's length.
func similar(s1, s2 string) bool {
	r1, r2 := []rune(strings.ToLower(s1)), []rune(strings.ToLower(s2))
	longer := len(r1)
	if len(r2) > longer {
		longer = len(r2)
	}
	if longer == 0 {
		return true
	}
	return float64(levenshtein(r1, r2))/float64(longer) < 0.3
}

func levenshtein(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min3(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
