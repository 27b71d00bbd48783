// Package billing computes rental charges for customer ledgers.
//
// A RuleTable resolves the pricing rule for each item, Compute derives the
// chargeable days and the total for one row, and Expand injects an
// outstanding line after every row with unreturned units. Everything in this
// package is pure: malformed input degrades to zero or unknown values and is
// reported through model.Diagnostics, never as an error.
package billing
