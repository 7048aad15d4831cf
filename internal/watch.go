package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/typelint/internal/types"
)

// debounce is how long a file must stay quiet before it is linted again.
const debounce = 100 * time.Millisecond

var (
	ErrAlreadyWatching = errors.New("already watching")
	ErrNotWatching     = errors.New("not watching")
)

// WatchExtensions are the file extensions that trigger a re-lint.
var WatchExtensions = []string{".ts", ".mts", ".cts"}

// OnIssues sets the callback receiving the issues of every re-linted file.
// Without one, issues are logged.
func (e *Engine) OnIssues(fn func(filename string, issues []tt.Issue)) {
	e.onIssues = fn
}

// StartWatching adds every directory below the engine root to a file
// watcher and re-lints changed files in the background.
func (e *Engine) StartWatching() error {
	if e.isWatching {
		return ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	e.watcher = watcher

	for _, dir := range e.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if e.isIgnoredPath(path) {
					return filepath.SkipDir
				}
				return e.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = watcher.Close()
			return err
		}
	}

	e.isWatching = true
	go e.watchLoop()
	return nil
}

func (e *Engine) StopWatching() error {
	if !e.isWatching {
		return ErrNotWatching
	}

	e.isWatching = false
	return e.watcher.Close()
}

func (e *Engine) watchLoop() {
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	for {
		select {
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if !e.isWatchedEvent(event) {
				continue
			}
			// coalesce bursts of writes to the same file into one run
			mu.Lock()
			if t, ok := timers[event.Name]; ok {
				t.Stop()
			}
			name := event.Name
			timers[name] = time.AfterFunc(debounce, func() {
				mu.Lock()
				delete(timers, name)
				mu.Unlock()
				e.handleFileEvent(name)
			})
			mu.Unlock()
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (e *Engine) isWatchedEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	for _, ext := range WatchExtensions {
		if strings.HasSuffix(event.Name, ext) {
			return true
		}
	}
	return false
}

func (e *Engine) handleFileEvent(filename string) {
	issues, err := e.Run(filename)
	if err != nil {
		e.logger.Error("error linting changed file", zap.String("file", filename), zap.Error(err))
		return
	}
	if e.onIssues != nil {
		e.onIssues(filename, issues)
		return
	}
	e.reportIssues(filename, issues)
}

func (e *Engine) reportIssues(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		e.logger.Info("no issues found", zap.String("file", filename))
		return
	}

	e.logger.Info("found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		e.logger.Info(issue.Message,
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.Int("column", issue.Start.Column))
	}
}
