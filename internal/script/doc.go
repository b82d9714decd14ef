// Package script tokenizes the line-oriented query language.
//
// A line becomes a sequence of tokens. Each token is one of:
//   - Word: a run of letters, digits and the format's extra word characters,
//     or the contents of a "quoted literal"
//   - Operator: any other single character
//   - Group: the tokens between matching parentheses
//
// Whitespace separates tokens and "//" starts a comment outside literals.
package script
