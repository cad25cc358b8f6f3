package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qdm12/gosettings/reader"

	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/pregen"
)

func reportError(severity string, err error, messages ...string) {
	msg := severity
	if len(messages) > 0 {
		msg += ": " + strings.Join(messages, " ")
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Fprintln(log.Out(), msg)
}

func fatal(err error, messages ...string) {
	reportError("Fatal", err, messages...)
	os.Exit(1)
}

//////////////////////////////////////////////////////////////////////

func main() {
	hr := newHostResolve(nil)
	switch hr.parseOptions(os.Args) {
	case parseStop:
		return
	case parseFailed:
		os.Exit(1)
	case parseContinue:
	}

	env := reader.New(reader.Settings{})
	err := hr.readLogLevel(env)
	if err != nil {
		fatal(err)
	}
	hr.setLogLevel()
	log.Major(programName, " ", pregen.Version, " Starting with Log Level: ", log.Level())

	err = hr.buildSettings(env)
	if err != nil {
		fatal(err)
	}
	log.Minor(hr.settings.String())

	err = hr.buildCoordinators()
	if err != nil {
		fatal(err)
	}

	hr.Run()
	hr.statsReport(true) // Final stats - depending on log level
	hr.close()

	log.Major(programName, " ", pregen.Version, " Exiting after ",
		time.Since(hr.startTime).Round(time.Millisecond))

	if hr.failures > 0 {
		os.Exit(2)
	}
}
