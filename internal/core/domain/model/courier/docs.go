// Package courier contains the Courier aggregate.
//
// Couriers report availability and location through an external channel;
// the dispatch orchestrator only claims them (available -> busy) inside the
// assignment transaction.
package courier
