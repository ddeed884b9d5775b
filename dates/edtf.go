package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sfomuseum/go-edtf"
	"github.com/sfomuseum/go-edtf/parser"
)

// edtfBounds extracts strict lower/upper year bounds from an EDTF expression.
// An interval end the parser reports as open or unknown is cleared rather
// than left at a derived default.
func edtfBounds(expr string) (YearRange, bool) {
	d, err := parser.ParseString(expr)
	if err != nil || d == nil {
		return YearRange{}, false
	}
	var r YearRange
	if y, ok := spanYear(d.Start, true); ok {
		r.Start = &y
	}
	if y, ok := spanYear(d.End, false); ok {
		r.End = &y
	}
	if r.Empty() {
		return YearRange{}, false
	}
	return r, true
}

func spanYear(span *edtf.DateRange, lower bool) (int, bool) {
	if span == nil {
		return 0, false
	}
	d := span.Lower
	if !lower {
		d = span.Upper
	}
	if d == nil || d.Open || d.Unknown || d.YMD == nil {
		return 0, false
	}
	return d.YMD.Year, true
}

var (
	reCirca  = regexp.MustCompile(`(?i)^(?:circa|ca\.?|c\.|um|vers)\s*(\d{3,4})$`)
	reBefore = regexp.MustCompile(`(?i)^(?:before|avant|vor)\s+(\d{3,4})$`)
	reAfter  = regexp.MustCompile(`(?i)^(?:after|après|apres|nach)\s+(\d{3,4})$`)
	reDMY    = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	reYMD    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reChoice = regexp.MustCompile(`(?i)^(\d{3,4})\s+(?:or|ou|oder)\s+(\d{3,4})$`)
)

// textToEDTF is the lenient fallback: it converts the remaining natural
// phrasings to an EDTF expression, or "" when it has nothing to offer.
func textToEDTF(s string) string {
	t := strings.TrimSpace(s)
	if m := reCirca.FindStringSubmatch(t); m != nil {
		return m[1] + "~"
	}
	if m := reBefore.FindStringSubmatch(t); m != nil {
		return "../" + m[1]
	}
	if m := reAfter.FindStringSubmatch(t); m != nil {
		return m[1] + "/.."
	}
	if m := reDMY.FindStringSubmatch(t); m != nil {
		return isoDate(m[3], m[2], m[1])
	}
	if m := reYMD.FindStringSubmatch(t); m != nil {
		return isoDate(m[1], m[2], m[3])
	}
	if m := reChoice.FindStringSubmatch(t); m != nil {
		return m[1] + "/" + m[2]
	}
	return ""
}

func isoDate(y, m, d string) string {
	yy, _ := strconv.Atoi(y)
	mm, _ := strconv.Atoi(m)
	dd, _ := strconv.Atoi(d)
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", yy, mm, dd)
}
