package sampler

import (
	"time"

	"github.com/prometheus/procfs"
)

// Sample is one observation of the subject's memory footprint.
type Sample struct {
	Timestamp     time.Time
	ResidentBytes uint64
	VirtualBytes  uint64
}

// Series is the finalized, append-only time series for one process lifetime.
// It is owned exclusively by the monitor goroutine until Stop hands it over.
type Series struct {
	Samples []Sample
}

// Peak returns the maximum resident and virtual sizes observed, or zeros for
// an empty series.
func (s *Series) Peak() (resident, virtual uint64) {
	for _, smp := range s.Samples {
		if smp.ResidentBytes > resident {
			resident = smp.ResidentBytes
		}
		if smp.VirtualBytes > virtual {
			virtual = smp.VirtualBytes
		}
	}
	return resident, virtual
}

// Monitor polls a running process's /proc entry in a background goroutine.
// It terminates on the explicit Stop signal or as soon as the entry becomes
// unreadable, whichever comes first, so it never outlives the process by more
// than one interval.
type Monitor struct {
	interval time.Duration
	done     chan struct{}
	finished chan struct{}
	series   *Series
}

// Start begins sampling pid every interval.
func Start(pid int, interval time.Duration) *Monitor {
	m := &Monitor{
		interval: interval,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		series:   &Series{},
	}
	go m.loop(pid)
	return m
}

// Stop signals that the process has exited, waits for the sampling goroutine
// to drain, and transfers ownership of the finalized series to the caller.
// Call it exactly once, after the process wait returns.
func (m *Monitor) Stop() *Series {
	close(m.done)
	<-m.finished
	return m.series
}

func (m *Monitor) loop(pid int) {
	defer close(m.finished)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	if !m.sample(pid) {
		return
	}
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if !m.sample(pid) {
				return
			}
		}
	}
}

// sample appends one observation. A failed /proc read means the process
// exited or became inaccessible mid-read; both are expected teardown races
// and end the loop quietly.
func (m *Monitor) sample(pid int) bool {
	proc, err := procfs.NewProc(pid)
	if err != nil {
		return false
	}
	stat, err := proc.Stat()
	if err != nil {
		return false
	}
	m.series.Samples = append(m.series.Samples, Sample{
		Timestamp:     time.Now(),
		ResidentBytes: uint64(stat.ResidentMemory()),
		VirtualBytes:  uint64(stat.VirtualMemory()),
	})
	return true
}
