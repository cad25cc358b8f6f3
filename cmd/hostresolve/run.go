package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/markdingo/hostresolve/coordinator"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
	"github.com/markdingo/hostresolve/osutil"
	"github.com/markdingo/hostresolve/pregen"
)

// Run performs all lookup passes while checking for signals. It returns when the passes
// are complete or a terminating signal arrives.
func (t *hostResolve) Run() {
	t.startTime = time.Now()
	osutil.SignalNotify(t.sig) // Register interest in signals
	defer osutil.SignalStop(t.sig)
	defer close(t.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	finished := make(chan struct{})
	go func() {
		t.passes(ctx)
		close(finished)
	}()

	var signal os.Signal
	stopFlag := false
	for !stopFlag {
		select {
		case <-finished:
			return

		case signal = <-t.sig:
			switch {
			case osutil.IsSignalTERM(signal), osutil.IsSignalINT(signal):
				stopFlag = true

			case osutil.IsSignalUSR1(signal): // USR1 produces a status report
				t.statsReport(false)

			case osutil.IsSignalUSR2(signal): // USR2 toggles --log-debug
				t.opts.logDebugFlag = !t.opts.logDebugFlag
				t.setLogLevel()
				log.Majorf("--log-debug=%t", t.opts.logDebugFlag)

			case osutil.IsSignalHUP(signal):
				log.Major("SIGHUP cache flush")
				for _, c := range t.coordinators() {
					c.Flush()
				}

			default:
				log.Majorf("Signal '%s' reserved for future use", signal)
			}
		}
	}

	log.Majorf("Signal '%s' initiates shutdown", signal)
	cancel()   // Abandon outstanding lookups
	<-finished // and wait for the pass to notice
}

// setLogLevel transfers logging options to the log package
func (t *hostResolve) setLogLevel() {
	level := log.SilentLevel
	if t.opts.logMajorFlag {
		level = log.MajorLevel
	}
	if t.opts.logMinorFlag {
		level = log.MinorLevel
	}
	if t.opts.logDebugFlag {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// passes resolves all hostnames --repeat times, or until ctx is done.
func (t *hostResolve) passes(ctx context.Context) {
	var interval <-chan time.Time
	if t.opts.repeat != 1 {
		ticker := time.NewTicker(t.opts.interval)
		defer ticker.Stop()
		interval = ticker.C
	}

	for pass := 1; ; pass++ {
		log.Minorf("Pass %d", pass)
		for _, c := range t.coordinators() {
			t.resolveAll(ctx, c)
		}
		if pass == t.opts.repeat {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-interval:
		}
	}
}

type lookupResult struct {
	addrs lookup.AddressSet
	err   error
}

// resolveAll looks up every hostname concurrently with c then prints the results in
// command line order. Repeated hostnames share the one lookup.
func (t *hostResolve) resolveAll(ctx context.Context, c *coordinator.Coordinator) {
	results := make([]lookupResult, len(t.opts.hosts))
	var wg sync.WaitGroup
	for ix, host := range t.opts.hosts {
		wg.Add(1)
		go func(ix int, host string) {
			defer wg.Done()
			addrs, err := c.Resolve(ctx, host)
			results[ix] = lookupResult{addrs, err}
		}(ix, host)
	}
	wg.Wait()

	for ix, host := range t.opts.hosts {
		res := results[ix]
		if res.err != nil {
			t.failures++
			fmt.Fprintf(log.Out(), "%s lookup: %s error: %s\n", c.Name(), host, res.err)
			continue
		}
		fmt.Fprintf(log.Out(), "%s lookup: %s %s\n", c.Name(), host, res.addrs)
	}
}

// statsReport writes coordinator stats. The final report is only logged at Minor level.
func (t *hostResolve) statsReport(final bool) {
	logger := log.Major
	if final {
		logger = log.Minor
	}

	logger("Stats: Uptime ", time.Since(t.startTime).Round(time.Millisecond), " ", pregen.Version)
	var totals coordinator.Stats
	for _, c := range t.coordinators() {
		st := c.Stats()
		totals.Add(&st)
		logger("Stats: ", c.Name(), " ", st.String(), " entries=", c.Cache().Len())
	}
	if t.compare != nil {
		logger("Stats: Total ", totals.String())
	}
}
