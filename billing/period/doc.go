// Package period implements the billing-period state machine for FablePress
// accounts.
//
// The state of an account is never stored directly: it is derived lazily at
// read time from the subscription status, the cancel flag, and the trial and
// period timestamps (StateOf), so there is no background job to drift out of
// sync. Transitions driven by checkout and by payment-provider webhooks go
// through Machine, which guards each transition against the derived state and
// applies it under the account's row lock so a period reset can never
// interleave with an in-flight quota consume.
//
// The grace rule lives here and in the entitlement evaluator: a past_due
// account keeps full access until its current period end. Access is revoked
// only once the period has ended and the status is still not active.
package period
