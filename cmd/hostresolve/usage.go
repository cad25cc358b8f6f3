package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/markdingo/hostresolve/log"
)

type parseResult int // This is a ternary variable
const (
	parseStop     parseResult = iota // No error, but don't continue
	parseContinue                    // No errors and continue
	parseFailed                      // Errors, do not continue
)

// parseOptions populates t.opts from args. Flags must precede hostnames. If no hostnames
// are supplied, defaultHost is used.
//
// As with most flags packages, pflag silently accepts duplicate options with the last one
// winning. That ambiguity is rejected here apart from options which accumulate.
func (t *hostResolve) parseOptions(args []string) parseResult {
	var helpFlag, versionFlag bool

	name := programName
	if len(args) > 0 {
		name = args[0]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Consider '-h' for command-line usage")
	}

	fs.SetOutput(log.Out())

	// Non-config flags

	fs.BoolVarP(&helpFlag, "help", "h", false, "Print command-line usage")
	fs.BoolVarP(&versionFlag, "version", "v", false, "Print version and origin URL")

	// config flags

	fs.BoolVar(&t.opts.logMajorFlag, "log-major", true, "Log major events to Stdout")
	fs.BoolVar(&t.opts.logMinorFlag, "log-minor", false,
		"Log minor events to Stdout - this implies --log-major")
	fs.BoolVar(&t.opts.logDebugFlag, "log-debug", false,
		"Log debug events to Stdout - this implies --log-minor")
	fs.BoolVar(&t.opts.compareFlag, "compare", false,
		`Also resolve each hostname with a fixture strategy and print
both results. Without --fixture or --fixture-file, every
hostname resolves to `+compareAddress+` in the fixture.`)

	// config Durations

	fs.DurationVar(&t.opts.timeout, "timeout", 0,
		"Bound on each network lookup (default 5s)")
	fs.DurationVar(&t.opts.ttl, "ttl", 0,
		`Cache TTL for answers which lack one, such as those from the
system transport. 0s disables caching of such answers
(default 1m0s)`)
	fs.DurationVar(&t.opts.maxTTL, "max-ttl", 0,
		"Upper bound on any cache TTL. 0s means no limit.")
	fs.DurationVar(&t.opts.interval, "interval", defaultInterval,
		"Delay between passes when --repeat is not 1")

	// config ints

	fs.IntVar(&t.opts.repeat, "repeat", 1,
		`Number of passes over all hostnames. 0 means repeat until
SIGINT or SIGTERM.`)
	fs.IntVar(&t.opts.cacheShards, "cache-shards", 0, "Number of cache shards (default 16)")

	// config StringVars

	fs.StringVar(&t.opts.strategy, "strategy", "",
		"One of network, fixture or failover (default network)")
	fs.StringVar(&t.opts.transport, "transport", "",
		`Capability used by the network strategy. 'system' uses the Go
resolver and supplies no TTLs. 'exchange' queries --server
directly and caches with answer TTLs (default system).
`)
	fs.StringVar(&t.opts.fixtureFile, "fixture-file", "",
		"Zone-format file of A and AAAA RRs for the fixture strategy.")

	// config String Arrays

	fs.StringSliceVar(&t.opts.failover, "failover", []string{},
		`Ordered members of the failover strategy
(default network,fixture)`)
	fs.StringArrayVar(&t.opts.servers, "server", []string{},
		`DNS server as host[:port]. Exchange tries each in turn. System
accepts at most one.`)
	fs.StringArrayVar(&t.opts.fixtures, "fixture", []string{},
		"Fixture entry as hostname=address[,address]")

	////////////////////////////////////////

	dupes := make(map[string]bool) // True means dupes are ok

	dupes["help"] = true    // Documentation options that never run hostresolve
	dupes["version"] = true // can be duplicate because the user may be fumbling

	dupes["server"] = true // These are legitimately allowed multiple times and
	dupes["fixture"] = true

	fs.SetInterspersed(false)
	err := fs.ParseAll(args[1:],
		func(f *flag.Flag, v string) error {
			t.opts.set[f.Name] = true
			if tf, ok := dupes[f.Name]; ok {
				if tf {
					return fs.Set(f.Name, v)

				}
				return fmt.Errorf("Duplicate option '--%v %v' not allowed",
					f.Name, v)
			}
			dupes[f.Name] = false
			return fs.Set(f.Name, v)
		})

	if err != nil {
		fmt.Fprintln(log.Out(), "Error:", err.Error())
		return parseFailed
	}

	// Handle all documentation options locally

	if helpFlag {
		printUsage(fs)
		fmt.Fprintln(log.Out())
		t.opts.printVersion()
		return parseStop
	}

	if versionFlag {
		t.opts.printVersion()
		return parseStop
	}

	if t.opts.repeat < 0 {
		fmt.Fprintln(log.Out(), "Error: --repeat must not be negative")
		return parseFailed
	}
	if t.opts.repeat != 1 && t.opts.interval <= 0 {
		fmt.Fprintln(log.Out(), "Error: --interval must be positive with --repeat")
		return parseFailed
	}

	t.opts.hosts = fs.Args()
	if len(t.opts.hosts) == 0 {
		t.opts.hosts = []string{defaultHost}
	}

	return parseContinue
}

func printUsage(fs *flag.FlagSet) {
	o := log.Out()
	fmt.Fprintln(o, "NAME")
	fmt.Fprintln(o, " ", programName, "-- resolve hostnames through a cached, pluggable resolver")
	fmt.Fprintln(o)
	fmt.Fprintln(o, "SYNOPSIS")
	fmt.Fprintln(o, "     hostresolve -h | --help | -v | --version")
	fmt.Fprintln(o, "     hostresolve [--strategy network|fixture|failover] [--failover list]")
	fmt.Fprintln(o, `                 [--transport system|exchange] [--server host[:port]]…
                 [--timeout time.Duration] [--ttl time.Duration] [--max-ttl time.Duration]
                 [--fixture hostname=address[,address]]… [--fixture-file path]
                 [--compare] [--repeat count=1] [--interval time.Duration=1s]
                 [--cache-shards count]
                 [--log-major=true] [--log-minor] [--log-debug]
                 [hostname]…`)

	fmt.Fprintln(o)
	fmt.Fprintln(o, "     Ellipses (…) indicate options which can be specified multiple times.")
	fmt.Fprint(o, `
DESCRIPTION
     hostresolve resolves each hostname to its IPv4 and IPv6 addresses and prints
     the result. Lookups pass through a cache and concurrent lookups of the same
     hostname share a single query. With --repeat, the passes repeat so that
     cache behaviour can be observed.

     The network strategy queries the DNS, the fixture strategy answers from
     pre-registered entries and the failover strategy tries each of its members
     in turn. The default hostname is `+defaultHost+`

     Settings may also be supplied with HOSTRESOLVE_* environment variables. A
     command line option overrides the corresponding environment variable.
     HOSTRESOLVE_LOG_LEVEL is one of Silent, Major, Minor or Debug and only
     applies if no --log-* option is present.
`)
	fmt.Fprintln(o)
	fmt.Fprintln(o, "OPTIONS")
	op := fs.Output()
	fs.SetOutput(o)
	fs.PrintDefaults()
	fs.SetOutput(op)

	fmt.Fprint(o, `
SIGNALS
  SIGHUP  - flush caches
  SIGTERM - initiate shutdown
  SIGINT  - initiate shutdown
  SIGUSR1 - generates an immediate stats report
  SIGUSR2 - toggles --log-debug
`)
}
