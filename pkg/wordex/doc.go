// Package wordex is the embeddable API for building and querying word
// indexes.
//
// An index maps every indexed word of a document collection to the pages
// it occurs on. Queries are boolean expressions over words:
//
//	idx, err := wordex.Open("out/corpus")
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	res, err := idx.Search(ctx, "cat & (dog | prefix(eel)) - range(1,10)")
//	for _, d := range res.Documents {
//	    fmt.Println(d.Path, d.Pages)
//	}
//
// Building takes plain text documents whose pages are separated by form
// feeds:
//
//	stats, err := wordex.Build(ctx, "out/corpus", []string{"docs/"},
//	    wordex.WithMinWordLength(4),
//	)
//
// # Thread Safety
//
// An [Index] is safe for concurrent use. Statements run one at a time;
// variables defined with [Index.Define] are shared by every caller.
package wordex
