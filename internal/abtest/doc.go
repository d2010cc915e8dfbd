// Package abtest assigns users to experiment variants and tracks the events
// they produce.
//
// A Manager owns one identity: the user id persisted in its KeyValueStore.
// Assignment is deterministic. The bucket hash(userID + experimentID) mod 100
// first gates traffic eligibility and then selects the variant by walking the
// cumulative weights in declared order. Each assignment is cached in memory
// and persisted so later calls, and later processes sharing the store, return
// the same variant.
//
// Tracking never blocks on delivery. Events are appended to a bounded local
// history and handed to a Dispatcher, which owns one queue and one worker per
// sink so a slow or failing sink cannot hold up the others.
//
// Without a store (server-side rendering, for example) the Manager uses the
// "server" sentinel identity and behaves as a no-op: no variants are assigned
// and nothing is tracked.
package abtest
