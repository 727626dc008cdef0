package site

import (
	"html/template"
	"sync"
	"time"
)

// Layout fragment source files, rendered into the page chrome.
const (
	headerFragment = "_header.md"
	footerFragment = "_footer.md"
)

// LayoutSnapshot holds the cached header/footer fragments.
type LayoutSnapshot struct {
	Header   template.HTML
	Footer   template.HTML
	LoadedAt time.Time
}

type LayoutCache struct {
	mu       sync.RWMutex
	snapshot LayoutSnapshot
}

func newLayoutCache() *LayoutCache {
	return &LayoutCache{}
}

func (c *LayoutCache) Update(header, footer template.HTML) {
	c.mu.Lock()
	c.snapshot = LayoutSnapshot{
		Header:   header,
		Footer:   footer,
		LoadedAt: time.Now(),
	}
	c.mu.Unlock()
}

func (c *LayoutCache) Snapshot() LayoutSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}
