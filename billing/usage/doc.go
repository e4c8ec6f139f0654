// Package usage persists subscriber accounts and their per-period usage
// counters, and provides the atomic consume primitive every billable action
// goes through.
//
// The core contract is TryConsume: a single conditional update that
// increments a counter only if the post-increment value stays within the
// limit captured at call time. The check and the increment are one storage
// operation, never a read followed by a write from handler code, so two
// concurrent requests can never both observe "room available" and overshoot
// the limit.
//
// Lifecycle mutations (checkout activation, period renewal, cancellation) go
// through Update, which serializes with TryConsume on the same account so a
// period reset can never interleave with a consume.
package usage
