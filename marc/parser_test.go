package marc

import (
	"reflect"
	"testing"
)

const sampleBlob = `=001 00000990
=100 1#$aCorelli, Arcangelo$d1653-1713
=240 10$aSonatas$mviolin, continuo
=594 ##$bvl (2)$c1
=594 ##$bb (1)

=852 ##$aD-B$8 01`

func TestParse(t *testing.T) {
	rec, err := Parse(sampleBlob)
	if err != nil {
		t.Fatalf("parsing sample: %v", err)
	}
	if len(rec.Fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(rec.Fields))
	}

	ctl := rec.Fields[0]
	if !ctl.Control() {
		t.Fatalf("001 should be a control field")
	}
	if ctl.ControlData != "00000990" {
		t.Fatalf("control data: %q", ctl.ControlData)
	}
	if ctl.Indicators != "" || ctl.Subfields != nil {
		t.Fatalf("control field must not carry indicators or subfields: %+v", ctl)
	}

	f100 := rec.Fields[1]
	if f100.Tag != "100" || f100.Indicators != "1#" {
		t.Fatalf("unexpected 100 field: %+v", f100)
	}
	want := []Subfield{{'a', "Corelli, Arcangelo"}, {'d', "1653-1713"}}
	if !reflect.DeepEqual(f100.Subfields, want) {
		t.Fatalf("100 subfields: %+v", f100.Subfields)
	}
}

func TestParseDeterministic(t *testing.T) {
	a, err := Parse(sampleBlob)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse(sampleBlob)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("parsing is not deterministic")
	}
}

func TestParseEmptySubfieldList(t *testing.T) {
	rec, err := Parse("=500 ##")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := rec.Fields[0]
	if f.Subfields == nil || len(f.Subfields) != 0 {
		t.Fatalf("data field must carry a (possibly empty) subfield list: %+v", f)
	}
	if f.ControlData != "" {
		t.Fatalf("data field must not carry control data")
	}
}

func TestParseDuplicateCodesPreserved(t *testing.T) {
	rec, err := Parse("=700 12$aSmith$aJones$aSmith")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	subs := rec.Fields[0].Subfields
	if len(subs) != 3 {
		t.Fatalf("duplicate subfield codes must not be collapsed: %+v", subs)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, blob := range []string{
		"no marker at all",
		"=10 missing a digit",
		"=2x4 bad tag",
		"=100",
		"=100x1#$abad separator",
		"=100 1",
		"=100 1#$aok\ngarbage line",
	} {
		if _, err := Parse(blob); err == nil {
			t.Errorf("expected malformed input error for %q", blob)
		} else if _, ok := err.(MalformedLineError); !ok {
			t.Errorf("expected MalformedLineError for %q, got %T", blob, err)
		}
	}
}

func TestParseSkipsEmptyLines(t *testing.T) {
	rec, err := Parse("\n=001 x\n\n\n=005 y\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rec.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(rec.Fields))
	}
}
