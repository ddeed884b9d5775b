// Package dates turns the free-text date statements found in catalog records
// into integer year ranges. Statements are messy: bracketed guesses,
// multi-language "no date" markers, mashed-together digit runs, century
// phrases in several notations. Normalization is best-effort and never fails;
// anything unrecognizable comes back as an empty range.
package dates

import (
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// YearRange is a best-effort pair of year bounds. Either end may be unknown.
// When both are present, Start <= End.
type YearRange struct {
	Start *int
	End   *int
}

// Empty reports whether no bound was resolved.
func (r YearRange) Empty() bool {
	return r.Start == nil && r.End == nil
}

const cacheSize = 16384

// Normalizer memoizes normalization by the exact input literal. Identical
// statements recur across thousands of rows, and normalization is a pure
// function of its input.
type Normalizer struct {
	cache *lru.Cache[string, YearRange]
}

func NewNormalizer() (*Normalizer, error) {
	cache, err := lru.New[string, YearRange](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating date cache")
	}
	return &Normalizer{cache: cache}, nil
}

// Normalize resolves one date statement to a year range.
func (n *Normalizer) Normalize(statement string) YearRange {
	if r, ok := n.cache.Get(statement); ok {
		return r
	}
	r := normalize(statement)
	n.cache.Add(statement, r)
	return r
}

// noDateTokens are the known placeholder spellings for "no date", compared
// after lowercasing and stripping brackets and parentheses.
var noDateTokens = map[string]struct{}{
	"s.d.":      {},
	"s.d":       {},
	"s. d.":     {},
	"s/d":       {},
	"sd":        {},
	"s.a.":      {},
	"s.a":       {},
	"sine anno": {},
	"n.d.":      {},
	"n.d":       {},
	"n. d.":     {},
	"o.j.":      {},
	"o.j":       {},
	"o. j.":     {},
	"ohne jahr": {},
	"sans date": {},
	"no date":   {},
	"undated":   {},
}

func noDate(s string) bool {
	t := strings.NewReplacer("[", "", "]", "", "(", "", ")", "").Replace(strings.ToLower(s))
	_, ok := noDateTokens[strings.TrimSpace(t)]
	return ok
}

func normalize(statement string) YearRange {
	s := strings.TrimSpace(statement)
	if s == "" || noDate(s) {
		return YearRange{}
	}
	s = rewrite(s)
	if s == "" {
		return YearRange{}
	}
	if r, ok := recognize(s); ok {
		return checked(r)
	}
	if r, ok := edtfBounds(s); ok {
		return checked(r)
	}
	if expr := textToEDTF(s); expr != "" {
		if r, ok := edtfBounds(expr); ok {
			return checked(r)
		}
	}
	return YearRange{}
}

// checked discards inverted ranges rather than guessing which bound is wrong.
func checked(r YearRange) YearRange {
	if r.Start != nil && r.End != nil && *r.Start > *r.End {
		return YearRange{}
	}
	return r
}

var (
	reDotted        = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`)
	reShorthand     = regexp.MustCompile(`^(\d{2})(?:--|\?\?)$`)
	reGluedSuffix   = regexp.MustCompile(`(?i)(\d{4})[a-z]+`)
	reZeroDay       = regexp.MustCompile(`(\d{4})-00(?:-00)?`)
	reMashed        = regexp.MustCompile(`^(\d{4})(\d{4})$`)
	reHyphenRange   = regexp.MustCompile(`^(\d{3,4})(?:\s*[-–]\s*(\d{3,4}))+$`)
	reBetween       = regexp.MustCompile(`(?i)\b(?:between|entre|zwischen)\s+(\d{3,4})\s+(?:and|et|und)\s+(\d{3,4})\b`)
	reParenCentury  = regexp.MustCompile(`(?i)\([^)]*(?:century|siècle|jahrhundert|sec)[^)]*\)`)
	reNotAfter      = regexp.MustCompile(`(?i)\bnot\s+after\b`)
	reNotBefore     = regexp.MustCompile(`(?i)\bnot\s+before\b`)
	reManyWhitespce = regexp.MustCompile(`\s+`)
)

// rewrite applies the textual normalization cascade in fixed order. Each step
// is independent; together they fold the common cataloguing quirks into forms
// the recognizers and the EDTF fallback can handle.
func rewrite(s string) string {
	t := reDotted.ReplaceAllString(s, "$1-$2-$3")
	t = strings.NewReplacer("[", "", "]", "").Replace(t)
	// question marks are uncertainty noise except in the NN?? century
	// shorthand, which the recognizer consumes whole
	if !reShorthand.MatchString(strings.TrimSpace(t)) {
		t = strings.ReplaceAll(t, "?", "")
	}
	t = reGluedSuffix.ReplaceAllString(t, "$1")
	t = reZeroDay.ReplaceAllString(t, "$1")
	t = mashedRewrite(t)
	if m := reHyphenRange.FindStringSubmatch(strings.TrimSpace(t)); m != nil {
		t = m[1] + "/" + m[2]
	}
	t = reBetween.ReplaceAllString(t, "$1/$2")
	t = reParenCentury.ReplaceAllString(t, "")
	t = strings.NewReplacer("(", "", ")", "", `"`, "", "'", "").Replace(t)
	t = reNotAfter.ReplaceAllString(t, "before")
	t = reNotBefore.ReplaceAllString(t, "after")
	return strings.TrimSpace(reManyWhitespce.ReplaceAllString(t, " "))
}

// mashedRewrite expands an 8-digit run into either a day date (YYYYMMDD) or a
// year range (YYYYYYYY, second year not before the first).
func mashedRewrite(s string) string {
	m := reMashed.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	mm, _ := strconv.Atoi(m[2][:2])
	dd, _ := strconv.Atoi(m[2][2:])
	if mm >= 1 && mm <= 12 && dd >= 1 && dd <= 31 {
		return m[1] + "-" + m[2][:2] + "-" + m[2][2:]
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if b >= a {
		return m[1] + "/" + m[2]
	}
	return s
}

var (
	reTruncRange     = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	reYear           = regexp.MustCompile(`^\d{1,4}$`)
	reVerboseCentury = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)\s+century,?\s+([a-z]+)(?:\s+([a-z]+))?$`)
	reCompactCentury = regexp.MustCompile(`^(\d{1,2})\.([1-4])([htqd])$`)
)

// recognize tries the special-case recognizers in order, returning on the
// first match.
func recognize(s string) (YearRange, bool) {
	if m := reShorthand.FindStringSubmatch(s); m != nil {
		c, _ := strconv.Atoi(m[1])
		return span(c*100, c*100+99), true
	}
	if m := reTruncRange.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		return span((a-1)*100, b*100-1), true
	}
	if reYear.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return span(y, y), true
	}
	if m := reVerboseCentury.FindStringSubmatch(s); m != nil {
		c, _ := strconv.Atoi(m[1])
		return centurySpan(c, strings.ToLower(m[2]), strings.ToLower(m[3]))
	}
	if m := reCompactCentury.FindStringSubmatch(s); m != nil {
		c, _ := strconv.Atoi(m[1])
		period := map[string]string{"h": "half", "t": "third", "q": "quarter", "d": "decade"}[m[3]]
		return centurySpan(c, m[2], period)
	}
	return YearRange{}, false
}

// dividers gives the number of divisions a period word splits a century into.
var dividers = map[string]int{
	"half":      2,
	"third":     3,
	"quarter":   4,
	"decade":    10,
	"beginning": 10,
	"end":       10,
}

var ordinals = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
	"1":      1,
	"2":      2,
	"3":      3,
	"4":      4,
}

// centurySpan resolves "Nth century, <adjective>" and
// "Nth century, <ordinal> <period>" phrasings.
func centurySpan(century int, w1, w2 string) (YearRange, bool) {
	start := (century - 1) * 100
	if w2 == "" {
		switch w1 {
		case "beginning", "start", "early":
			return span(start, start+10), true
		case "late", "end":
			return span(start+90, start+100), true
		case "middle", "mid":
			return span(start+25, start+75), true
		}
		return YearRange{}, false
	}
	div, ok := dividers[w2]
	if !ok {
		return YearRange{}, false
	}
	var mult int
	if w1 == "last" {
		mult = div
	} else if mult, ok = ordinals[w1]; !ok {
		return YearRange{}, false
	}
	step := 100 / div
	return span(start+(mult-1)*step, start+mult*step), true
}

func span(a, b int) YearRange {
	return YearRange{Start: &a, End: &b}
}
