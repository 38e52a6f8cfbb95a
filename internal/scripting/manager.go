package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/rng"
)

// globalEncounterID is the reserved key for shared scripts loaded via
// LoadGlobal. CallHook falls back to this VM when no encounter VM is found.
const globalEncounterID = "__global__"

// ActorInfo is a snapshot of a combatant's state passed to Lua callbacks.
type ActorInfo struct {
	ID        string
	Name      string
	Team      int
	Warmth    float64
	MaxWarmth float64
	Effects   []string
}

// Manager owns one sandboxed LState per encounter and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadEncounter calls
// complete. Each encounter's LState is single-threaded; the read lock
// serializes concurrent calls to the same encounter while allowing different
// encounters to run concurrently.
type Manager struct {
	mu      sync.RWMutex
	states  map[string]*lua.LState
	cancels map[string]func()
	roller  *rng.Roller
	logger  *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetActor    func(id string) *ActorInfo
	ApplyEffect func(actorID, effectID string) error
	DealDamage  func(actorID string, amount float64) error
	Announce    func(msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty encounter map.
func NewManager(roller *rng.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: roller must not be nil")
	}
	if logger == nil {
		panic("scripting: logger must not be nil")
	}
	return &Manager{
		states:  make(map[string]*lua.LState),
		cancels: make(map[string]func()),
		roller:  roller,
		logger:  logger,
	}
}

// LoadEncounter creates a sandboxed VM for encounterID, registers all
// engine.* modules, then executes every *.lua file in scriptDir in
// lexicographic order.
//
// Precondition: encounterID must be non-empty; scriptDir must be a readable
// directory.
// Postcondition: Encounter VM is registered; returns error on Lua load failure.
func (m *Manager) LoadEncounter(encounterID, scriptDir string, instLimit int) error {
	return m.loadInto(encounterID, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts accessible as a
// CallHook fallback from any encounter.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalEncounterID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		if oldCancel := m.cancels[key]; oldCancel != nil {
			oldCancel()
		}
		old.Close()
	}
	m.states[key] = L
	m.cancels[key] = cancel
	m.mu.Unlock()
	return nil
}

// Close shuts down every VM. The Manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		if cancel := m.cancels[key]; cancel != nil {
			cancel()
		}
		L.Close()
	}
	m.states = make(map[string]*lua.LState)
	m.cancels = make(map[string]func())
}

// CallHook calls the named Lua global function in encounterID's VM. If the
// encounter has no VM, the __global__ VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors
// are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(encounterID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	L, ok := m.states[encounterID]
	if !ok {
		L = m.states[globalEncounterID]
	}
	m.mu.RUnlock()

	if L == nil {
		m.logger.Info("scripting: no VM for encounter",
			zap.String("encounter", encounterID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("encounter", encounterID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}
