package marc

import (
	"fmt"
	"strings"
)

// Line grammar: '=' + 3-digit tag + one space + remainder. Control fields
// (tags below "010") keep the remainder verbatim; data fields carry a
// two-character indicator code followed by '$'-delimited subfields.
const (
	lineMarker    = '='
	subfieldDelim = '$'
)

// MalformedLineError indicates a record line matching neither the control nor
// the standard field grammar. It is scoped to a single record: the caller
// drops the record and continues with the rest of the batch.
type MalformedLineError struct {
	Line string
}

func (e MalformedLineError) Error() string {
	return fmt.Sprintf("malformed record line %q", e.Line)
}

// Parse turns one newline-separated record blob into a Record. Empty lines
// are skipped. Field and subfield order is preserved exactly as encountered.
func Parse(blob string) (*Record, error) {
	rec := &Record{}
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		field, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, field)
	}
	return rec, nil
}

// parseLine classifies one line as a control or standard field and parses it.
// Two explicit states instead of one alternation-heavy pattern: the tag
// decides the shape of the remainder, and subfield tokenization is a separate
// step.
func parseLine(line string) (Field, error) {
	tag, rest, ok := splitTag(line)
	if !ok {
		return Field{}, MalformedLineError{Line: line}
	}
	if tag < "010" {
		return Field{Tag: tag, ControlData: rest}, nil
	}
	if len(rest) < 2 {
		return Field{}, MalformedLineError{Line: line}
	}
	return Field{
		Tag:        tag,
		Indicators: rest[:2],
		Subfields:  tokenizeSubfields(rest[2:]),
	}, nil
}

// splitTag peels "=TTT " off the front of a line, returning the tag and the
// remainder.
func splitTag(line string) (tag, rest string, ok bool) {
	if len(line) < 5 || line[0] != lineMarker {
		return "", "", false
	}
	tag = line[1:4]
	for i := 0; i < len(tag); i++ {
		if tag[i] < '0' || tag[i] > '9' {
			return "", "", false
		}
	}
	if line[4] != ' ' {
		return "", "", false
	}
	return tag, line[5:], true
}

// tokenizeSubfields splits the post-indicator remainder at the subfield
// delimiter. The first byte of each fragment is the code, the rest its value.
// Empty fragments are dropped; duplicate codes are kept in order.
func tokenizeSubfields(s string) []Subfield {
	subs := []Subfield{}
	for _, frag := range strings.Split(s, string(subfieldDelim)) {
		if frag == "" {
			continue
		}
		subs = append(subs, Subfield{Code: frag[0], Value: frag[1:]})
	}
	return subs
}
