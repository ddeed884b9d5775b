// Package termstat provides a stats implementation which periodically prints
// the pipeline's counters (records built, records dropped, batches submitted,
// batches failed) to the given writer. It is meant for watching long indexing
// runs at the terminal in lieu of an external stats collector.
package termstat

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Collector accumulates counters and prints them on an interval.
type Collector struct {
	mu       sync.Mutex
	counters map[string]int64
	changed  bool
	out      io.Writer
	done     chan struct{}
}

// NewCollector initializes and returns a Collector printing to out every
// interval.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	c := &Collector{
		counters: make(map[string]int64),
		out:      out,
		done:     make(chan struct{}),
	}
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				c.write(false)
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// Stop ends periodic printing and flushes a final line.
func (c *Collector) Stop() {
	close(c.done)
	c.write(true)
}

// Count adds value to the named counter. The rate and tags arguments exist to
// satisfy the Statter interface and are ignored.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	c.mu.Lock()
	c.counters[name] += value
	c.changed = true
	c.mu.Unlock()
}

// Gauge does nothing.
func (c *Collector) Gauge(name string, value float64, rate float64, tags ...string) {}

// Timing does nothing.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {}

func (c *Collector) write(final bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.changed && !final {
		return
	}
	names := make([]string, 0, len(c.counters))
	for name := range c.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	sb := strings.Builder{}
	for _, name := range names {
		fmt.Fprintf(&sb, "%s: %d ", name, c.counters[name])
	}
	c.changed = false
	end := "\r"
	if final {
		end = "\n"
	}
	fmt.Fprintf(c.out, "\r%s%s", strings.TrimRight(sb.String(), " "), end)
}
