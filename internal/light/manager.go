package light

import (
	"sort"
	"sync"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/sweep"
)

// Manager keeps the set of active lights: a registry of named scene lights
// plus an optional cursor-driven light. It also caches attenuation grids
// for static lights so they are only re-swept when the decay grid changes.
type Manager struct {
	engine *sweep.Engine
	interp *Interpolator

	lights      map[string]*Source
	cursorLight *Source
	cursorOn    bool

	// cacheMu guards cache: per-light sweeps fan out concurrently.
	cacheMu sync.Mutex
	cache   map[cacheKey]*grid.Grid
}

// cacheKey identifies a static light's attenuation result for one snapshot
// of the decay grid.
type cacheKey struct {
	x, y    int
	rate    float32
	version uint64
}

// NewManager creates a lighting manager around a sweep engine.
func NewManager(engine *sweep.Engine) *Manager {
	return &Manager{
		engine: engine,
		interp: NewInterpolator(engine),
		lights: make(map[string]*Source),
		cache:  make(map[cacheKey]*grid.Grid),
	}
}

// AddLight registers or replaces a named light.
func (m *Manager) AddLight(id string, src Source) {
	m.lights[id] = &src
}

// RemoveLight removes a named light.
func (m *Manager) RemoveLight(id string) {
	delete(m.lights, id)
}

// ClearLights removes all named lights.
func (m *Manager) ClearLights() {
	m.lights = make(map[string]*Source)
}

// SetCursorLight configures the cursor-driven light.
func (m *Manager) SetCursorLight(src Source) {
	m.cursorLight = &src
}

// MoveCursorLight updates the cursor light's position.
func (m *Manager) MoveCursorLight(x, y float64) {
	if m.cursorLight != nil {
		m.cursorLight.X = x
		m.cursorLight.Y = y
	}
}

// EnableCursorLight turns the cursor light on or off.
func (m *Manager) EnableCursorLight(enabled bool) {
	m.cursorOn = enabled
}

// CursorLightOn reports whether the cursor light is active.
func (m *Manager) CursorLightOn() bool {
	return m.cursorOn && m.cursorLight != nil
}

// ActiveLights returns all active sources in a deterministic order.
func (m *Manager) ActiveLights() []Source {
	ids := make([]string, 0, len(m.lights))
	for id := range m.lights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Source, 0, len(ids)+1)
	if m.CursorLightOn() {
		out = append(out, *m.cursorLight)
	}
	for _, id := range ids {
		out = append(out, *m.lights[id])
	}
	return out
}

// Attenuation computes (or recalls) the attenuation grid for one source
// over the given decay grid. Static sources are cached per decay-grid
// version; fractional sources always go through the interpolator.
func (m *Manager) Attenuation(decay *grid.Grid, src Source) (*grid.Grid, error) {
	if !src.Static() {
		return m.interp.Calculate(decay, src.X, src.Y, src.DecayRate)
	}

	key := cacheKey{x: int(src.X), y: int(src.Y), rate: src.DecayRate, version: decay.Version()}
	m.cacheMu.Lock()
	att, ok := m.cache[key]
	m.cacheMu.Unlock()
	if ok {
		return att, nil
	}

	att, err := m.engine.CalculateRate(decay, key.x, key.y, src.DecayRate)
	if err != nil {
		return nil, err
	}

	// Results for older grid versions are stale; keep the cache bounded to
	// the current snapshot.
	m.cacheMu.Lock()
	for k := range m.cache {
		if k.version != key.version {
			delete(m.cache, k)
		}
	}
	m.cache[key] = att
	m.cacheMu.Unlock()
	return att, nil
}
