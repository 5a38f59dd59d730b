package relgen

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// InstancePool caches materialized entities per table, keyed by their
// encoded primary key. A pool is owned by a single client session and is
// safe for concurrent use.
//
// When the pool is disabled Get always misses and Put and Remove are no-ops.
type InstancePool struct {
	tables  *xsync.Map[string, *xsync.Map[string, Entity]]
	enabled atomic.Bool

	mu sync.Mutex
	// suspended counts the Suspend calls not restored yet. resume is the
	// state pooling had when the first of them started.
	suspended int
	resume    bool
}

// NewInstancePool returns an enabled, empty pool.
func NewInstancePool() *InstancePool {
	p := &InstancePool{tables: xsync.NewMap[string, *xsync.Map[string, Entity]]()}
	p.enabled.Store(true)
	return p
}

func (p *InstancePool) table(name string) *xsync.Map[string, Entity] {
	m, _ := p.tables.LoadOrCompute(name, func() (*xsync.Map[string, Entity], bool) {
		return xsync.NewMap[string, Entity](), false
	})
	return m
}

// Get returns the pooled entity of table t with the given key.
func (p *InstancePool) Get(t *schema.Table, key string) (Entity, bool) {
	if !p.Enabled() {
		return nil, false
	}
	m, ok := p.tables.Load(t.Name)
	if !ok {
		return nil, false
	}
	return m.Load(key)
}

// Put adds e to the pool of table t. An empty key is computed from the
// primary key values of e. Entities of keyless tables, and entities with a
// NULL key column, are not pooled.
func (p *InstancePool) Put(t *schema.Table, e Entity, key string) {
	if !p.Enabled() || e == nil {
		return
	}
	if key == "" {
		var ok bool
		if key, ok = EntityKey(t, e); !ok {
			return
		}
	}
	p.table(t.Name).Store(key, e)
}

// Remove evicts entries of table t. v is either an Entity, an encoded key
// string, or a *sql.Criteria. Criteria cannot be matched against pooled
// entities, so they evict the whole table.
func (p *InstancePool) Remove(t *schema.Table, v any) {
	if !p.Enabled() {
		return
	}
	switch v := v.(type) {
	case nil:
	case string:
		p.RemoveKey(t, v)
	case Entity:
		if key, ok := EntityKey(t, v); ok {
			p.RemoveKey(t, key)
		}
	case *sql.Criteria:
		p.ClearTable(t)
	}
}

// RemoveKey evicts the entry of table t with the given key.
func (p *InstancePool) RemoveKey(t *schema.Table, key string) {
	if m, ok := p.tables.Load(t.Name); ok {
		m.Delete(key)
	}
}

// ClearTable evicts every entry of table t.
func (p *InstancePool) ClearTable(t *schema.Table) {
	if m, ok := p.tables.Load(t.Name); ok {
		m.Clear()
	}
}

// ClearRelated clears the pools of tables whose foreign keys to t cascade
// or set null on delete, since their pooled rows may be stale.
func (p *InstancePool) ClearRelated(t *schema.Table) {
	for _, fk := range t.Referrers() {
		switch fk.OnDelete {
		case schema.ActionCascade, schema.ActionSetNull:
			p.ClearTable(fk.Table())
		}
	}
}

// Clear evicts every entry of every table.
func (p *InstancePool) Clear() {
	p.tables.Range(func(_ string, m *xsync.Map[string, Entity]) bool {
		m.Clear()
		return true
	})
}

// Len returns the number of pooled entities of table t.
func (p *InstancePool) Len(t *schema.Table) int {
	if m, ok := p.tables.Load(t.Name); ok {
		return m.Size()
	}
	return 0
}

// Enabled reports whether pooling is enabled.
func (p *InstancePool) Enabled() bool { return p.enabled.Load() }

// Enable enables pooling.
func (p *InstancePool) Enable() { p.enabled.Store(true) }

// Disable disables pooling. Pooled entries are kept.
func (p *InstancePool) Disable() { p.enabled.Store(false) }

// Suspend disables pooling and returns a function ending the suspension.
// Pooling gets back the state it had before the first pending Suspend once
// every suspension has ended, in any order. The restore function is
// effective once; later calls do nothing.
func (p *InstancePool) Suspend() (restore func()) {
	p.mu.Lock()
	if p.suspended == 0 {
		p.resume = p.enabled.Swap(false)
	}
	p.suspended++
	p.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.suspended--; p.suspended == 0 && p.resume {
				p.enabled.Store(true)
			}
		})
	}
}
