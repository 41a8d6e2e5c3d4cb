package audit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-singleton/framework/metrics"
	"github.com/km-arc/go-singleton/framework/singleton"
)

// DefaultSuffixes are the file name suffixes a Factory accepts unless
// WithSuffixes says otherwise.
var DefaultSuffixes = []string{".log"}

// ErrFileLimit is returned (as an InvalidKey error) when a factory has
// already built WithMaxFiles managers and a new file name is requested.
var ErrFileLimit = errors.New("audit file limit reached")

// Factory hands out the audit manager for a file name, constructing it
// lazily through a singleton registry. Managers are keyed by absolute path,
// so "audit.log" and "./audit.log" resolve to the same instance.
//
// Managers are never evicted, so a factory fed by untrusted names should be
// confined with WithDir and bounded with WithMaxFiles.
type Factory struct {
	lazy     *singleton.LazyFactory
	dir      string
	suffixes []string
	maxFiles int
	created  atomic.Int64
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Collectors
}

// Option configures a Factory.
type Option func(*Factory)

// WithDir confines audit files to dir. Absolute names and names that
// escape dir are rejected with an InvalidKey error.
func WithDir(dir string) Option { return func(f *Factory) { f.dir = dir } }

// WithSuffixes replaces the accepted file name suffixes. Calling it with no
// suffixes accepts any name that is not hidden.
func WithSuffixes(suffixes ...string) Option {
	return func(f *Factory) { f.suffixes = suffixes }
}

// WithMaxFiles caps how many managers the factory builds. Zero means no cap.
// Names that already have a manager keep working once the cap is reached.
func WithMaxFiles(n int) Option { return func(f *Factory) { f.maxFiles = n } }

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(f *Factory) { f.now = now } }

// WithLogger sets the logger used for manager lifecycle events.
func WithLogger(l *zap.Logger) Option { return func(f *Factory) { f.logger = l } }

// WithMetrics sets the prometheus collectors.
func WithMetrics(c *metrics.Collectors) Option { return func(f *Factory) { f.metrics = c } }

// NewFactory returns a factory whose managers live in r.
func NewFactory(r *singleton.Registry, opts ...Option) *Factory {
	f := &Factory{
		lazy:     singleton.NewLazyFactory(r),
		suffixes: DefaultSuffixes,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetInstance returns the manager for fileName. The first call for a file
// writes the "Log started: <timestamp>" header; later calls return the same
// manager without touching the file.
func (f *Factory) GetInstance(fileName string) (*Manager, error) {
	path, err := f.Path(fileName)
	if err != nil {
		return nil, err
	}

	key := singleton.NewKey(KeyKind, path)
	v, err := f.lazy.Get(key, func() (any, error) {
		m, err := f.reserve(key, path)
		f.metrics.ObserveConstruction(KeyKind, err)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manager), nil
}

// Path resolves fileName to the absolute path used as the manager key.
//
// The name must not be empty, must not contain NUL or hidden elements
// (".env", ".git/x.log") and must end in one of the accepted suffixes.
// With WithDir it must also be relative and stay inside the directory.
func (f *Factory) Path(fileName string) (string, error) {
	key := singleton.NewKey(KeyKind, fileName)
	if strings.TrimSpace(fileName) == "" {
		return "", singleton.InvalidKey(key, "empty file name")
	}
	if strings.ContainsRune(fileName, 0) {
		return "", singleton.InvalidKey(key, "file name contains NUL")
	}

	if f.dir == "" {
		abs, err := filepath.Abs(fileName)
		if err != nil {
			return "", singleton.InvalidKey(key, err.Error())
		}
		if reason := f.checkName(filepath.Base(abs)); reason != "" {
			return "", singleton.InvalidKey(key, reason)
		}
		return abs, nil
	}

	if filepath.IsAbs(fileName) {
		return "", singleton.InvalidKey(key, "absolute file name outside audit directory")
	}
	root, err := filepath.Abs(f.dir)
	if err != nil {
		return "", singleton.InvalidKey(key, err.Error())
	}
	path := filepath.Join(root, fileName)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", singleton.InvalidKey(key, "file name escapes audit directory")
	}
	if reason := f.checkName(rel); reason != "" {
		return "", singleton.InvalidKey(key, reason)
	}
	return path, nil
}

// checkName returns why name is not an acceptable audit file name, or "".
func (f *Factory) checkName(name string) string {
	for _, elem := range strings.Split(filepath.ToSlash(name), "/") {
		if strings.HasPrefix(elem, ".") {
			return fmt.Sprintf("hidden path element %q", elem)
		}
	}
	if len(f.suffixes) == 0 {
		return ""
	}
	for _, suffix := range f.suffixes {
		if strings.HasSuffix(name, suffix) {
			return ""
		}
	}
	return fmt.Sprintf("file name must end in one of %v", f.suffixes)
}

// label is the metrics label for path: relative to the audit directory when
// one is set, otherwise the base name.
func (f *Factory) label(path string) string {
	if f.dir != "" {
		if root, err := filepath.Abs(f.dir); err == nil {
			if rel, err := filepath.Rel(root, path); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.Base(path)
}

// Managers returns the keys of every audit manager built in the registry.
func (f *Factory) Managers() []singleton.Key {
	var out []singleton.Key
	for _, k := range f.lazy.Registry().Keys() {
		if k.Kind == KeyKind {
			out = append(out, k)
		}
	}
	return out
}

// reserve takes one slot under the WithMaxFiles cap and opens the manager,
// giving the slot back if opening fails.
func (f *Factory) reserve(key singleton.Key, path string) (*Manager, error) {
	n := f.created.Add(1)
	if f.maxFiles > 0 && n > int64(f.maxFiles) {
		f.created.Add(-1)
		return nil, &singleton.Error{Kind: singleton.KindInvalidKey, Key: key, Err: ErrFileLimit}
	}
	m, err := f.open(key, path)
	if err != nil {
		f.created.Add(-1)
		return nil, err
	}
	return m, nil
}

func (f *Factory) open(key singleton.Key, path string) (*Manager, error) {
	m := &Manager{key: key, path: path, label: f.label(path), now: f.now, metrics: f.metrics}
	header := "Log started: " + m.now().Format(TimestampLayout) + "\n"
	if err := appendLine(path, header); err != nil {
		return nil, singleton.IOFailure(key, err)
	}

	f.metrics.ManagerCreated()
	f.logger.Debug("audit manager created", zap.String("file", path))
	return m, nil
}

var defaultFactory = singleton.NewLazy(singleton.Default(), singleton.TypeKey((*Factory)(nil)),
	func() (*Factory, error) { return NewFactory(singleton.Default()), nil })

// Default returns the process-wide factory over singleton.Default().
func Default() *Factory {
	f, err := defaultFactory.Get()
	if err != nil {
		// the constructor cannot fail
		panic(err)
	}
	return f
}

// GetInstance returns the process-wide manager for fileName.
func GetInstance(fileName string) (*Manager, error) {
	return Default().GetInstance(fileName)
}
