package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// FileRuleStore loads rule YAML files (".yaml"/".yml") from a directory,
// keyed by filename without extension, and keeps its snapshot current two
// ways: an fsnotify watch for near-real-time reload, grounded on the
// teacher's manager.FileWatcher, and a defensive robfig/cron full rescan in
// case filesystem events are coalesced or dropped by the OS.
type FileRuleStore struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	rules map[string]string

	watcher *fsnotify.Watcher
	cronJob *cron.Cron

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewFileRuleStore constructs a FileRuleStore over dir, performs an
// initial full load, and starts the watch + defensive rescan. rescanSpec
// is a standard 5-field cron expression (e.g. "*/5 * * * *" for every 5
// minutes); an empty string disables the defensive rescan.
func NewFileRuleStore(dir string, rescanSpec string, logger *slog.Logger) (*FileRuleStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileRuleStore{
		dir:    dir,
		logger: logger,
		rules:  make(map[string]string),
		stopCh: make(chan struct{}),
	}

	if err := s.rescan(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	s.watcher = watcher
	go s.watchLoop()

	if rescanSpec != "" {
		s.cronJob = cron.New()
		if _, err := s.cronJob.AddFunc(rescanSpec, s.rescanDefensive); err != nil {
			return nil, err
		}
		s.cronJob.Start()
	}

	return s, nil
}

// GetByCode implements RuleDefinitionStore.
func (s *FileRuleStore) GetByCode(ctx context.Context, code string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.rules[code]
	return text, ok, nil
}

// Close stops the watcher and the defensive rescan job.
func (s *FileRuleStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.cronJob != nil {
		<-s.cronJob.Stop().Done()
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *FileRuleStore) watchLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !hasRuleExtension(event.Name) {
				continue
			}
			s.logger.Debug("rule file event detected", "path", event.Name, "op", event.Op.String())
			if err := s.rescan(); err != nil {
				s.logger.Error("rule file rescan failed", "error", err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("rule file watcher error", "error", err)
		}
	}
}

func (s *FileRuleStore) rescanDefensive() {
	if err := s.rescan(); err != nil {
		s.logger.Error("defensive rule rescan failed", "error", err)
	}
}

// rescan reloads every rule file in dir, replacing the in-memory snapshot
// atomically so readers never observe a partial reload.
func (s *FileRuleStore) rescan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	fresh := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !hasRuleExtension(e.Name()) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Error("failed to read rule file", "path", path, "error", err)
			continue
		}
		code := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		fresh[code] = string(data)
	}

	s.mu.Lock()
	s.rules = fresh
	s.mu.Unlock()
	return nil
}

func hasRuleExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
