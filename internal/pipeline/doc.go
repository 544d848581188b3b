// Package pipeline contains the stateful orchestrator of the meeting
// scheduler: a polling controller that discovers unread messages
// exactly once per process, classifies them for meeting intent,
// computes conflict-free slots, drives a reply and acknowledges the
// message, tolerating partial failure at every step.
//
// The idempotency contract is claim-before-side-effect: a message id is
// recorded in the ProcessedSet the instant it is selected, before
// classification and before any reply. Within one process a message is
// therefore replied to at most once, at the cost of permanently
// skipping a message whose pipeline failed mid-way. Such a message
// stays unread at the source and is picked up again by a fresh process;
// a duplicate reply after a restart is the accepted tradeoff of keeping
// the ledger in memory.
//
// The Monitor serializes polls: ticks never overlap, and an on-demand
// PollNow contends with the timer through the same guard.
package pipeline
