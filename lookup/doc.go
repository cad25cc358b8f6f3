/*
Package lookup contains the data types exchanged between callers, the coordinator and the
resolver strategies: normalized hostnames, ordered address sets, answers carrying an
optional TTL, and the typed resolution error.

The types carry no behaviour beyond construction and inspection. In particular an Answer
does not enforce a non-empty AddressSet; that is the job of each strategy.
*/
package lookup
