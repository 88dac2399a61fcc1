// Package file keeps usersearch settings in a TOML file under the config
// directory and reloads them when the file changes on disk.
//
// Adapters:
//   - ConfigStore: dot-keyed settings ("search.debounce") backed by config.toml
//   - Watcher: fsnotify watch on the config file that reloads the store and
//     notifies listeners, so a new identity server URL reaches running searches
package file
