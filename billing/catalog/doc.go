// Package catalog holds the subscription plan catalog for FablePress.
//
// A Plan bundles the per-period allowances (books or illustrations, template
// book slots, bonus variation slots) and rights (commercial use, resell,
// formatting options) for one tier. Plans are read-mostly: they are loaded
// once at startup from an in-memory table or a YAML file and validated before
// use. Limit edits made by operators take effect at the next billing period
// rollover, never mid-period.
//
// Every plan counts usage along exactly one quota dimension: trial-style
// plans count whole books, paid tiers count individual illustrations. The
// catalog rejects plans that declare both dimensions or neither.
package catalog
