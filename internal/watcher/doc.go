// Package watcher reports changes to a fixed set of files, such as a query
// script and the index it runs against.
//
// fsnotify watches the files' directories, so editors that save by writing
// a new file and renaming it over the old one are still seen. When fsnotify
// is unavailable the files are polled instead. Bursts of events are
// debounced into one batch.
//
//	w, err := watcher.New(watcher.DefaultOptions(), "queries.txt")
//	if err != nil {
//	    return err
//	}
//	go func() { _ = w.Run(ctx) }()
//	for batch := range w.Events() {
//	    // re-run the script
//	}
package watcher
