package ports

import "github.com/tomas/vigia/internal/domain/risk"

// Feed is a push-based source of live readings (the CSV tailer implements
// this). Start attaches to the source and invokes the callback for every
// reading that arrives after attachment; history is skipped.
type Feed interface {
	// Start begins delivering readings to onReading. The callback may be
	// invoked from any goroutine. Returns an error if the source cannot
	// be attached.
	Start(onReading func(risk.Reading)) error

	// Stop ends delivery and releases resources. After Stop returns, no
	// further callbacks fire. Safe to call multiple times.
	Stop() error
}
