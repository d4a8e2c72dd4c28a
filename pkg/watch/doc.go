// Package watch recompiles pseudocode files as they are edited.
//
// A Watcher watches a file or a directory tree with fsnotify. When a source
// file (by default *.pseudo or *.txt) is written, the change is debounced
// and the file is compiled; the graph is written to <name>.mmd beside the
// source or in watch.output_dir. A source that fails to compile leaves the
// previous .mmd untouched and the error is logged with its line, so a
// preview showing the output keeps the last good diagram while the author
// is mid-edit.
//
//	w, err := watch.New(cfg.Watch, renderer, watch.WithMetrics(collector))
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	return w.Watch(ctx, "docs/")
package watch
