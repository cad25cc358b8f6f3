package main

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/pregen"
)

const (
	programName = "hostresolve"

	// Kinda subtle, but uppercase HTTPS implies BuildInfo was empty
	defaultProjectURL = "HTTPS://github.com/markdingo/hostresolve"

	defaultHost     = "www.example.com."
	defaultInterval = time.Second
	compareAddress  = "127.0.0.1" // Fixture answer for --compare without fixtures
)

// options holds the command line settings. Resolution settings are only transferred to
// config.Settings if the corresponding flag was present so that environment values are
// not overridden by flag defaults.
type options struct {
	projectURL string

	logMajorFlag bool // Major events such as start, stop and stats
	logMinorFlag bool // Details associated with Major event
	logDebugFlag bool // Developer flag

	compareFlag bool          // Also resolve with a fixture strategy
	repeat      int           // Passes over all hosts. Zero means until signalled.
	interval    time.Duration // Between passes

	strategy    string
	failover    []string
	transport   string
	servers     []string
	timeout     time.Duration
	ttl         time.Duration
	maxTTL      time.Duration
	fixtures    []string // host=addr[,addr]
	fixtureFile string
	cacheShards int

	set   map[string]bool // Flags present on the command line
	hosts []string        // Remaining arguments
}

func newOptions() *options {
	t := &options{projectURL: defaultProjectURL, set: make(map[string]bool)}
	info, ok := debug.ReadBuildInfo()
	if ok && len(info.Main.Path) > 0 {
		t.projectURL = info.Main.Path // Override with embedded if present
	}

	return t
}

func (t *options) printVersion() {
	fmt.Fprintf(log.Out(), "Program:     %s %s (%s)\n",
		programName, pregen.Version, pregen.ReleaseDate)
	fmt.Fprintf(log.Out(), "Project:     %s\n", t.projectURL)
}
