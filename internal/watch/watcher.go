package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered
const DefaultDebounce = 100 * time.Millisecond

// Config controls what a FileWatcher watches
type Config struct {
	Root       string        // Directory watched recursively
	Extensions []string      // e.g. ".go", ".hcl"; empty matches every file
	Ignored    []string      // Base-name globs, e.g. "*_test.go"
	Debounce   time.Duration // DefaultDebounce when zero
	Logger     *zap.Logger
}

// FileWatcher monitors a directory tree and delivers debounced batches of
// changed files.
type FileWatcher struct {
	cfg       Config
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func([]string) error
	log       *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher. onChange runs on the debouncer's
// goroutine, one batch at a time.
func NewFileWatcher(cfg Config, onChange func([]string) error) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fw := &FileWatcher{
		cfg:       cfg,
		watcher:   watcher,
		debouncer: NewDebouncer(cfg.Debounce),
		onChange:  onChange,
		log:       log,
		stopChan:  make(chan struct{}),
	}
	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.log.Warn("error handling file changes", zap.Strings("files", files), zap.Error(err))
		}
	})
	return fw, nil
}

// Start registers every directory under Root and begins watching
func (fw *FileWatcher) Start() error {
	dirs, err := fw.findDirectories(fw.cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}
	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.log.Debug("watching directory", zap.String("dir", dir))
	}

	fw.wg.Add(1)
	go fw.watch()
	return nil
}

// Stop stops the watcher; it is safe to call more than once
func (fw *FileWatcher) Stop() error {
	select {
	case <-fw.stopChan:
		return nil
	default:
		close(fw.stopChan)
	}

	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if fw.shouldIgnore(event.Name) {
		return
	}

	// New directories are not watched by fsnotify until added
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			dirs, err := fw.findDirectories(event.Name)
			if err != nil {
				fw.log.Warn("could not scan new directory", zap.String("dir", event.Name), zap.Error(err))
				return
			}
			for _, dir := range dirs {
				if err := fw.watcher.Add(dir); err != nil {
					fw.log.Warn("could not watch directory", zap.String("dir", dir), zap.Error(err))
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !fw.matchesPattern(event.Name) {
		return
	}
	fw.log.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	fw.debouncer.Add(event.Name)
}

// findDirectories returns root and every directory below it that is not
// hidden or vendored.
func (fw *FileWatcher) findDirectories(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules"
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range fw.cfg.Ignored {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) matchesPattern(path string) bool {
	if len(fw.cfg.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range fw.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	running  sync.Mutex // serializes callbacks
	stopChan chan struct{}
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Add records a file and restarts the quiet period
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	select {
	case <-d.stopChan:
		return
	default:
	}

	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush delivers the accumulated files, sorted. The callback runs without the
// lock held so it may take long or call Add.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 || d.callback == nil {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	sort.Strings(files)
	d.running.Lock()
	defer d.running.Unlock()
	callback(files)
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels a pending flush
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
}
