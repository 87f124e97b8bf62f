// Package corpus reads the knowledge corpus from a directory tree of
// markdown and plain-text files. The top-level folder of each file
// becomes its category tag, so a corpus laid out as guides/, faq/,
// product/ carries its own retrieval taxonomy.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.CorpusSource = (*Connector)(nil)

// watchDebounce is how long a path must stay quiet before its change
// event is emitted. Editors fire bursts of writes per save.
const watchDebounce = 500 * time.Millisecond

// mimeTypes maps supported file extensions to MIME types. Anything
// else in the corpus is skipped silently.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
}

// Connector walks a corpus root directory.
type Connector struct {
	rootPath string
	ignore   []string

	watcher *fsnotify.Watcher
}

// New creates a corpus connector for the given root directory.
// Ignore patterns are doublestar globs matched against corpus-relative
// paths (e.g. "drafts/**", "**/*.tmp.md").
func New(rootPath string, ignore []string) *Connector {
	return &Connector{
		rootPath: rootPath,
		ignore:   ignore,
	}
}

// Validate checks the corpus root exists and is a readable directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("corpus root %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus root %s: %w: not a directory", c.rootPath, domain.ErrInvalidInput)
	}
	for _, pattern := range c.ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("ignore pattern %q: %w: invalid glob", pattern, domain.ErrConfiguration)
		}
	}
	return nil
}

// Scan streams every supported corpus file. Unreadable files go to the
// error channel and the walk continues.
func (c *Connector) Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsCh := make(chan domain.RawDocument)
	errsCh := make(chan error, 1)

	go func() {
		defer close(docsCh)
		defer close(errsCh)

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			name := d.Name()
			if d.IsDir() {
				if path != c.rootPath && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return nil
			}

			rel, err := filepath.Rel(c.rootPath, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if !c.supported(rel) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				// Report and keep walking.
				select {
				case errsCh <- fmt.Errorf("read %s: %w", rel, err):
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			doc := domain.RawDocument{
				Path:     rel,
				MIMEType: mimeTypes[strings.ToLower(filepath.Ext(rel))],
				Content:  content,
				Metadata: map[string]string{
					"category": category(rel),
				},
			}

			select {
			case docsCh <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errsCh <- fmt.Errorf("scan corpus: %w", err)
		}
	}()

	return docsCh, errsCh
}

// supported reports whether the corpus-relative path should be indexed.
// README files are always skipped: they describe the corpus layout, not
// the product.
func (c *Connector) supported(rel string) bool {
	ext := strings.ToLower(filepath.Ext(rel))
	if _, ok := mimeTypes[ext]; !ok {
		return false
	}
	base := rel[strings.LastIndex(rel, "/")+1:]
	if strings.EqualFold(strings.TrimSuffix(base, filepath.Ext(base)), "readme") {
		return false
	}
	for _, pattern := range c.ignore {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return false
		}
	}
	return true
}

// category returns the top-level folder of a corpus-relative path, or
// "general" for files at the root.
func category(rel string) string {
	if dir, _, found := strings.Cut(rel, "/"); found {
		return dir
	}
	return "general"
}

// Watch emits corpus-relative paths whose content changed. Directories
// created after the watch starts are picked up automatically.
func (c *Connector) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = watcher

	// Watch the whole tree; fsnotify does not recurse on its own.
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch corpus: %w", err)
	}

	changes := make(chan string)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- string) {
	defer close(changes)

	// Pending debounce timers keyed by absolute path.
	pending := make(map[string]*time.Timer)
	fired := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			// New directories join the watch set.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Op&fsnotify.Create != 0 && !strings.HasPrefix(filepath.Base(event.Name), ".") {
					if err := watcher.Add(event.Name); err != nil {
						logger.Debug("watch new directory %s: %v", event.Name, err)
					}
				}
				continue
			}

			rel, err := filepath.Rel(c.rootPath, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !c.supported(rel) {
				continue
			}

			if timer, exists := pending[event.Name]; exists {
				timer.Stop()
			}
			pending[event.Name] = time.AfterFunc(watchDebounce, func() {
				select {
				case fired <- rel:
				case <-ctx.Done():
				}
			})

		case rel := <-fired:
			select {
			case changes <- rel:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Debug("corpus watcher: %v", err)
		}
	}
}

// Close releases resources.
func (c *Connector) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
