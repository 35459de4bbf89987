package colors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Slot remembers which colour a value owns and when it was last shown.
type Slot struct {
	ColorID  string    `json:"color_id"`
	LastSeen time.Time `json:"last_seen"`
}

// ColorCache hands out colour IDs 1-11 to distinct values (statuses, owners)
// so a value keeps its colour between runs. When every ID is taken the least
// recently seen value gives its ID up.
type ColorCache struct {
	Path   string
	Values map[string]*Slot
	dirty  bool
	now    func() time.Time
}

const (
	xdgAppName = "taskboard"
	cacheFile  = "status_colors.json"

	// NoValueColor is used for empty cells.
	NoValueColor = "14"
	maxColors    = 11
)

// DefaultPath is ~/.config/taskboard/status_colors.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, cacheFile), nil
}

// NewColorCache loads the cache at path if it exists. An empty path keeps the
// cache in memory only.
func NewColorCache(path string) (*ColorCache, error) {
	cache := &ColorCache{
		Path:   path,
		Values: make(map[string]*Slot),
		now:    time.Now,
	}
	if path == "" {
		return cache, nil
	}
	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&c.Values); err != nil {
		return fmt.Errorf("failed to decode colour cache: %w", err)
	}
	if c.Values == nil {
		c.Values = make(map[string]*Slot)
	}
	return nil
}

// Save writes the cache when it changed since the last save.
func (c *ColorCache) Save() error {
	if !c.dirty || c.Path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return fmt.Errorf("failed to create colour cache directory: %w", err)
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("failed to create colour cache file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(c.Values); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// ColorID returns the colour for value, assigning one if needed.
func (c *ColorCache) ColorID(value string) string {
	if value == "" {
		return NoValueColor
	}
	if slot, ok := c.Values[value]; ok {
		slot.LastSeen = c.now()
		c.dirty = true
		return slot.ColorID
	}
	return c.assign(value)
}

// Seed hands out free slots to statuses not seen before, in the order given,
// so a tab's sorted status options get stable colours before any row is drawn.
// Known statuses keep their slot and seeding never recycles one.
func (c *ColorCache) Seed(statuses []string) {
	for _, v := range statuses {
		if len(c.Values) >= maxColors {
			return
		}
		if _, ok := c.Values[v]; v == "" || ok {
			continue
		}
		c.assign(v)
	}
}

func (c *ColorCache) assign(value string) string {
	used := make(map[string]bool, len(c.Values))
	for _, s := range c.Values {
		used[s.ColorID] = true
	}
	for i := 1; i <= maxColors; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Values[value] = &Slot{ColorID: id, LastSeen: c.now()}
			c.dirty = true
			return id
		}
	}

	var oldest string
	var oldestTime time.Time
	first := true
	for v, s := range c.Values {
		if first || s.LastSeen.Before(oldestTime) {
			oldest, oldestTime, first = v, s.LastSeen, false
		}
	}

	recycled := c.Values[oldest].ColorID
	delete(c.Values, oldest)
	c.Values[value] = &Slot{ColorID: recycled, LastSeen: c.now()}
	c.dirty = true
	return recycled
}
