// Package stats converts raw path matrices into a risk/return report.
//
// The engine is a pure function of the matrix and the initial price: no
// hidden state, identical output on identical input. Its central invariant
// is that every numeric field in the report is finite. Non-finite or
// non-positive final prices are excluded from aggregates; corrupt paths map
// to a worst-case drawdown sentinel of 1.0 instead of propagating NaN.
//
// The advanced block (higher moments, a one-sample t-test and a
// sample-size-dependent normality test) sits behind a capability flag; when
// disabled the corresponding report fields are nil, never zero, so "not
// computed" is never mistaken for "computed as zero".
package stats
