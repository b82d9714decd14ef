// Package finder runs query scripts against a built word index.
//
// A Session resolves words through an index.Reader, keeps the variables a
// script assigns and provides the functions scripts may call:
//
//	list(expr)            print every matching page
//	print(expr, ...)      echo the arguments without evaluating them
//	info()                describe the indexed documents
//	save()                write the session's statements to consoleN.txt
//	startsWith(p, ...)    list the indexed words with a prefix
//	prefix(p, ...)        the pages of every word with a prefix
//	quit()                end the session
//
// Statements run one at a time. Each executed statement can be recorded in
// a history store.
package finder
