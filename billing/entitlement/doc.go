// Package entitlement computes the allow/deny decisions and remaining counts
// for an account at a point in time.
//
// Evaluate is pure and side-effect free: the same (account, plan, now) always
// yields the same Snapshot, and the snapshot the UI renders is the same value
// the consume handlers gate on. Access control and display can therefore
// never disagree.
package entitlement
