package dns

import (
	"github.com/miekg/dns"
)

// StartServer starts a miekg DNS server on serverAddr and only returns once it is
// listening. The caller is responsible for calling Shutdown.
func StartServer(net, serverAddr string, h dns.Handler) *dns.Server {
	srv := &dns.Server{Net: net, Addr: serverAddr, Handler: h}
	hasStarted := make(chan struct{})
	srv.NotifyStartedFunc = func() {
		close(hasStarted)
	}

	failed := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil { // Shutdown or real error?
			failed <- err
		}
	}()

	select {
	case <-hasStarted:
	case err := <-failed:
		panic("Setup of Server failed:" + err.Error())
	}

	return srv
}
