// Package query parses script lines into commands and evaluates them to
// page sets.
//
// Operators, from tightest to loosest:
//
//	a & b    pages containing both
//	a ^ b    pages in an odd number of operands
//	a | b    pages containing either
//	a - b    pages of a not in b
//
// Built-in functions are and, or, xor, oddParity, atLeast2..atLeast9,
// exactly1..exactly9, integer, range and empty. Every other name(args) is
// forwarded to the Context.
package query
