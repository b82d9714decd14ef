// Package indexer builds the inverted index of a paged corpus.
//
// A build reads an ordered stream of pages, each a bag of words, and a
// sorted dictionary. It runs three strictly sequential phases:
//
//  1. Dictionary writes <name>.conw (page counts, document paths and the
//     dictionary) and <name>.words (one word per line).
//  2. Encode writes <name>.cong: every page's unique word indices, 16-bit
//     when the dictionary has at most 32767 words. Word occurrences are
//     tallied as they are written.
//  3. Transpose reads <name>.cong back into posting arrays presized from
//     the tallies, then writes <name>.coni (per word, the ascending page
//     numbers, 16-bit when there are at most 32767 pages) and the legible
//     <name>.index text.
//
// Any failure removes every output of the build.
package indexer
