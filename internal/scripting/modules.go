package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterModules registers the engine.* Lua table into L. Every function is
// backed by a Manager callback field; a nil callback makes the function a
// no-op returning nil so scripts stay loadable in partial harnesses.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "get_actor", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.GetActor == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetActor(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "id", lua.LString(info.ID))
		L.SetField(t, "name", lua.LString(info.Name))
		L.SetField(t, "team", lua.LNumber(info.Team))
		L.SetField(t, "warmth", lua.LNumber(info.Warmth))
		L.SetField(t, "max_warmth", lua.LNumber(info.MaxWarmth))
		effects := L.NewTable()
		for i, id := range info.Effects {
			L.RawSetInt(effects, i+1, lua.LString(id))
		}
		L.SetField(t, "effects", effects)
		L.Push(t)
		return 1
	}))

	L.SetField(engine, "apply_effect", L.NewFunction(func(L *lua.LState) int {
		actorID := L.CheckString(1)
		effectID := L.CheckString(2)
		if m.ApplyEffect == nil {
			L.Push(lua.LFalse)
			return 1
		}
		if err := m.ApplyEffect(actorID, effectID); err != nil {
			m.logger.Warn("scripting: apply_effect failed")
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LTrue)
		return 1
	}))

	L.SetField(engine, "deal_damage", L.NewFunction(func(L *lua.LState) int {
		actorID := L.CheckString(1)
		amount := float64(L.CheckNumber(2))
		if m.DealDamage == nil {
			L.Push(lua.LFalse)
			return 1
		}
		if err := m.DealDamage(actorID, amount); err != nil {
			m.logger.Warn("scripting: deal_damage failed")
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LTrue)
		return 1
	}))

	L.SetField(engine, "announce", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		if m.Announce != nil {
			m.Announce(msg)
		}
		return 0
	}))

	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if m.roller == nil || n <= 0 {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.roller.Intn(n)))
		return 1
	}))

	L.SetGlobal("engine", engine)
}
