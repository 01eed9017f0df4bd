package csvfeed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tomas/vigia/internal/domain/risk"
)

// Tailer watches a live CSV feed file and emits parsed readings.
//
// On attach it reads the header, seeks to the end (skipping history), and
// polls for appended rows. Truncation (size shrinks below the last offset)
// resets the tailer: the header is re-read and tailing restarts from the
// new end. Implements ports.Feed.
//
// Thread-safe: Start/Stop can be called from any goroutine.
type Tailer struct {
	path         string
	pollInterval time.Duration
	onError      func(error)

	// State
	cols    columns
	offset  int64
	partial string // trailing bytes of an incomplete last line

	mu      sync.Mutex
	done    chan struct{}
	started bool
	wg      sync.WaitGroup
}

// Config holds parameters for creating a Tailer.
type Config struct {
	// Path is the live feed CSV file. It must exist and carry a valid
	// header when Start is called.
	Path string

	// PollInterval is how often to check for new rows. Default: 500ms.
	PollInterval time.Duration

	// OnError is called for malformed rows and transient read failures.
	// Optional.
	OnError func(error)
}

// NewTailer creates a tailer for the given feed file.
func NewTailer(cfg Config) *Tailer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Tailer{
		path:         cfg.Path,
		pollInterval: cfg.PollInterval,
		onError:      cfg.OnError,
		done:         make(chan struct{}),
	}
}

// Start attaches to the feed file and begins delivering appended readings.
func (t *Tailer) Start(onReading func(r risk.Reading)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return fmt.Errorf("tailer already started")
	}

	if err := t.attach(); err != nil {
		return err
	}
	t.started = true

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				t.poll(onReading)
			}
		}
	}()
	return nil
}

// Stop ends delivery. Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = false
	close(t.done)
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}

// attach reads the header and positions the offset at end of file.
// Caller holds t.mu.
func (t *Tailer) attach() error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	headerLine, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read feed header: %w", err)
	}
	cols, err := mapHeader(splitCSVLine(headerLine))
	if err != nil {
		return fmt.Errorf("feed header: %w", err)
	}
	t.cols = cols

	info, err := f.Stat()
	if err != nil {
		return err
	}
	t.offset = info.Size()
	t.partial = ""
	return nil
}

// poll reads any bytes appended since the last offset and emits complete rows.
func (t *Tailer) poll(onReading func(risk.Reading)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		t.reportError(err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.reportError(err)
		return
	}

	if info.Size() < t.offset {
		// Truncated or rotated: re-attach from the new end.
		if err := t.attach(); err != nil {
			t.reportError(err)
		}
		return
	}
	if info.Size() == t.offset {
		return
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		t.reportError(err)
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.reportError(err)
		return
	}
	t.offset += int64(len(data))

	chunk := t.partial + string(data)
	lines := strings.Split(chunk, "\n")
	// The last element is either empty (chunk ended in \n) or a partial
	// row still being written; hold it back.
	t.partial = lines[len(lines)-1]

	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		record := splitCSVLine(line)
		reading, err := parseRow(t.cols, record)
		if err != nil {
			t.reportError(fmt.Errorf("feed row: %w", err))
			continue
		}
		onReading(reading)
	}
}

func (t *Tailer) reportError(err error) {
	if t.onError != nil {
		t.onError(err)
	}
}

// splitCSVLine splits one CSV line, honoring double-quoted fields.
func splitCSVLine(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
