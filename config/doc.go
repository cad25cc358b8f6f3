/*
Package config describes a resolution stack as a Settings struct and builds the
Coordinator it describes.

Settings may be filled by hand, from the environment with Read, or from command line
flags. SetDefaults fills anything left unset and Validate rejects inconsistent
combinations, such as the exchange transport without any servers. New does all three
steps then assembles the strategies, cache and Coordinator.

Environment keys:

	HOSTRESOLVE_STRATEGY      network, fixture or failover
	HOSTRESOLVE_FAILOVER      comma separated members of failover
	HOSTRESOLVE_TRANSPORT     system or exchange
	HOSTRESOLVE_SERVERS       comma separated host[:port] list
	HOSTRESOLVE_TIMEOUT       per strategy call, e.g. 2s
	HOSTRESOLVE_TTL           cache TTL for answers lacking one. 0s disables.
	HOSTRESOLVE_MAX_TTL       upper bound on any cache TTL. 0s means none.
	HOSTRESOLVE_FIXTURE_FILE  zone-format file of A and AAAA records
	HOSTRESOLVE_CACHE_SHARDS  number of cache shards
*/
package config
