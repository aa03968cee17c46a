// Package plotwindow maps the current civil time to the plot lines a
// character has already lived today.
package plotwindow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/utils/safego"
)

// Resolver locates and windows daily plot files under a root directory.
//
// Parsed files are cached per path; an optional fsnotify watcher drops
// cache entries when generator jobs rewrite files.
type Resolver struct {
	root string

	mu      sync.RWMutex
	cache   map[string][]entity.PlotLine
	watcher *fsnotify.Watcher
}

// NewResolver creates a Resolver over the plot root.
func NewResolver(root string) *Resolver {
	return &Resolver{
		root:  root,
		cache: make(map[string][]entity.PlotLine),
	}
}

// Watch invalidates the parse cache on file changes under the plot root.
func (r *Resolver) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create plot watcher: %w", err)
	}
	if err := w.Add(r.root); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch plot root %q: %w", r.root, err)
	}
	// Watch existing role dirs too; new ones are picked up via create events.
	entries, _ := os.ReadDir(r.root)
	for _, e := range entries {
		if e.IsDir() {
			_ = w.Add(filepath.Join(r.root, e.Name()))
		}
	}
	r.watcher = w

	safego.Go(func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						_ = w.Add(ev.Name)
					}
				}
				r.mu.Lock()
				delete(r.cache, ev.Name)
				r.mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("[PlotWindow] watcher error: %v", err)
			}
		}
	})
	return nil
}

// Close stops the watcher if one is running.
func (r *Resolver) Close() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

// Window resolves the plot window for a role at the given instant.
//
// A missing file for today triggers at most one previous-day fallback; an
// unresolvable day yields an empty window, never an error. Errors are
// reserved for filesystem failures other than absence.
func (r *Resolver) Window(roleID string, now time.Time) (entity.PlotWindow, error) {
	today := now.Format(clock.DateLayout)
	nowMin := now.Hour()*60 + now.Minute()

	lines, err := r.linesFor(roleID, today)
	if err != nil {
		return entity.PlotWindow{}, err
	}
	if len(lines) == 0 {
		// One previous-day attempt, then give up.
		yesterday := now.AddDate(0, 0, -1).Format(clock.DateLayout)
		prev, err := r.linesFor(roleID, yesterday)
		if err != nil || len(prev) == 0 {
			return entity.PlotWindow{}, err
		}
		return windowAll(prev), nil
	}

	// Before the day's first line: previous day in full, else just the
	// first line of today.
	if nowMin < lines[0].StartMin {
		yesterday := now.AddDate(0, 0, -1).Format(clock.DateLayout)
		prev, err := r.linesFor(roleID, yesterday)
		if err == nil && len(prev) > 0 {
			return windowAll(prev), nil
		}
		return windowUpTo(lines, 0), nil
	}

	// Past the day's last line: the whole day has been lived.
	last := lines[len(lines)-1]
	lastEnd := last.StartMin
	if !last.OpenEnded {
		lastEnd = last.EndMin
	}
	if nowMin >= lastEnd {
		return windowAll(lines), nil
	}

	// A concrete segment containing now wins over any open-ended match.
	for i, l := range lines {
		if !l.OpenEnded && l.StartMin <= nowMin && nowMin < l.EndMin {
			return windowUpTo(lines, i), nil
		}
	}
	// Open-ended lines match once their start has passed; the latest wins.
	openIdx := -1
	for i, l := range lines {
		if l.OpenEnded && nowMin >= l.StartMin {
			openIdx = i
		}
	}
	if openIdx >= 0 {
		return windowUpTo(lines, openIdx), nil
	}

	// Between segments: closest start decides.
	best, bestDist := 0, 1<<31
	for i, l := range lines {
		d := l.StartMin - nowMin
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return windowUpTo(lines, best), nil
}

// linesFor loads (cached) the plot lines for one role and date. A missing
// file resolves to nil lines with no error.
func (r *Resolver) linesFor(roleID, date string) ([]entity.PlotLine, error) {
	path := r.findFile(roleID, date)
	if path == "" {
		return nil, nil
	}

	r.mu.RLock()
	cached, ok := r.cache[path]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	lines, err := ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plot file %q: %w", path, err)
	}

	r.mu.Lock()
	r.cache[path] = lines
	r.mu.Unlock()
	return lines, nil
}

// findFile locates the plot file for (role, date). Two candidate folder
// names exist: "<role_id>_plot" and "<first_token>_plot"; the first folder
// containing a matching file wins. File names start with the date.
func (r *Resolver) findFile(roleID, date string) string {
	dirs := []string{roleID + "_plot"}
	if tok := strings.SplitN(roleID, "_", 2)[0]; tok != roleID {
		dirs = append(dirs, tok+"_plot")
	}

	for _, dir := range dirs {
		pattern := filepath.Join(r.root, dir, date+"*.txt")
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

func windowAll(lines []entity.PlotLine) entity.PlotWindow {
	return windowUpTo(lines, len(lines)-1)
}

func windowUpTo(lines []entity.PlotLine, idx int) entity.PlotWindow {
	w := entity.PlotWindow{Lines: make([]string, 0, idx+1)}
	for i := 0; i <= idx; i++ {
		w.Lines = append(w.Lines, lines[i].Raw)
	}
	w.Current = lines[idx].Raw
	return w
}
