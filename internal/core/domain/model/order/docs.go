// Package order contains the Order aggregate and its status state machines.
//
// The aggregate partitions its mutable state into dispatch fields (owned by
// the dispatch orchestrator) and payment fields (owned by the payment
// reconciler). Any future operation cutting across both groups requires an
// explicit combined transaction, not independent writes.
package order
