// Copyright 2023 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import (
	"github.com/fsnotify/fsnotify"
)

// Watch creates a filesystem watcher over the global and local module
// search directories, so a long-running host process can react to module
// files being added, replaced, or removed without restarting.
func (w *World) Watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{w.globalModulePath, w.localModulePath} {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

// HandleWatchEvent reacts to one fsnotify event against the module search
// directories: a Write, Create or Remove for a recognized module file path evicts
// any previously loaded module at that path so the next Load call
// re-reads it from disk, picking up the new contents.
func (w *World) HandleWatchEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
		return
	}
	path, _, ok := parseModuleFileName(ev.Name)
	if !ok {
		return
	}
	key := path.String()
	delete(w.modules, key)
	delete(w.impls, key)
	// Sizes and instantiations derived from the evicted module's type
	// definitions are stale now. Both caches are rebuilt lazily, so a full
	// reset is cheaper than tracking which entries depended on this module.
	w.sizeCache = newTypeSizeCache()
	w.instCache = newInstantiationCache()
	w.log.Info("module file changed, evicted cached module %s", key)
}
