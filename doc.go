// Copyright (c) 2021, 2022 Mark Delany. All rights reserved. Use of this source code is
// governed by a BSD-style license that can be found in the LICENSE file.

// This file exists so that "go doc github.com/markdingo/hostresolve" displays something
// useful.

/*

Package hostresolve resolves hostnames to IPv4 and IPv6 addresses through a cache and a
pluggable, cancellable resolution strategy. Concurrent requests for the same hostname are
coalesced into a single strategy call and every waiter receives the same outcome.

The packages are:

	lookup       hostnames, address sets, answers and the error taxonomy
	cache        TTL-bound sharded cache of successful answers
	resolver     the network, fixture and failover strategies and their capabilities
	coordinator  cache, de-duplication and fan-out in front of a strategy
	config       settings and construction of a Coordinator

The hostresolve command in cmd/hostresolve exercises all of the above from the command
line.

Project site: https://github.com/markdingo/hostresolve

*/
package hostresolve
