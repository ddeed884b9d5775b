package termstat

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCollector(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewCollector(buf, time.Hour)
	c.Count("records.built", 3, 1)
	c.Count("records.built", 2, 1)
	c.Count("records.dropped", 1, 1)
	c.Stop()

	out := buf.String()
	if !strings.Contains(out, "records.built: 5") {
		t.Fatalf("output %q missing accumulated counter", out)
	}
	if !strings.Contains(out, "records.dropped: 1") {
		t.Fatalf("output %q missing dropped counter", out)
	}
}
