package audit

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/km-arc/go-singleton/framework/metrics"
	"github.com/km-arc/go-singleton/framework/singleton"
)

const (
	// DefaultFileName is used when no audit file is configured.
	DefaultFileName = "audit.log"

	// TimestampLayout formats the prefix of every audit line.
	TimestampLayout = "2006-01-02 15:04:05"

	// KeyKind is the registry key kind of audit managers.
	KeyKind = "audit"
)

var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`)

// Manager appends timestamped lines to one audit file. There is one Manager
// per file per registry; obtain it through Factory.GetInstance.
//
// Lines are written in the order callers acquire the manager's write lock,
// which is not necessarily the order Log was called in. Nothing stronger is
// guaranteed across goroutines.
type Manager struct {
	key   singleton.Key
	path  string
	label string

	// mu serializes appends to path. It is unrelated to the registry's
	// construction lock and is never held while constructing.
	mu      sync.Mutex
	now     func() time.Time
	metrics *metrics.Collectors
}

// FileName returns the absolute path of the backing file.
func (m *Manager) FileName() string { return m.path }

// Key returns the registry key the manager is stored under.
func (m *Manager) Key() singleton.Key { return m.key }

// Log appends "<timestamp>: <message>\n". Line breaks inside message are
// escaped so every event stays on one line. A failed append returns an
// IOFailure and leaves the manager usable.
func (m *Manager) Log(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	line := m.now().Format(TimestampLayout) + ": " + lineBreaks.Replace(message) + "\n"
	err := appendLine(m.path, line)
	m.metrics.ObserveAppend(m.label, time.Since(start), err)
	if err != nil {
		return singleton.IOFailure(m.key, err)
	}
	return nil
}

// Logf is Log with fmt.Sprintf formatting.
func (m *Manager) Logf(format string, args ...any) error {
	return m.Log(fmt.Sprintf(format, args...))
}

// appendLine opens path for appending, writes line in one call and closes it.
// The file is created if missing and never truncated.
func appendLine(path, line string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = f.WriteString(line)
	return err
}
