package ports

// Watcher monitors a data directory for new or changed reading files.
// The adapter (fsnotify) must filter to CSV files and debounce rapid
// events before invoking onFile. Only one Watch call should be active
// at a time.
type Watcher interface {
	// Watch starts monitoring dir. onFile is called with the absolute
	// path of each new or rewritten CSV file. The callback may be
	// invoked from any goroutine. Returns an error if the directory
	// doesn't exist or permissions are insufficient.
	Watch(dir string, onFile func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop
	// returns, no further onFile calls will fire. Safe to call
	// multiple times.
	Stop() error
}
