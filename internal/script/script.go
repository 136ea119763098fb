// Package script runs an optional user Lua hook that can override the
// built-in building classification. The script defines a global
// classify(building) function; returning nil keeps the built-in result.
package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/urbanforge/osm2scene/internal/estimate"
)

// Hook manages the Lua interpreter for classification overrides. The
// interpreter is not goroutine-safe, so calls serialize on a mutex.
type Hook struct {
	L        *lua.LState
	classify lua.LValue
	mu       sync.Mutex
}

// Load reads and executes a script file, then looks up its classify
// callback.
func Load(path string) (*Hook, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	h := &Hook{L: L}
	registerHelpers(L)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	h.classify = L.GetGlobal("classify")
	return h, nil
}

// LoadString executes script source directly, for tests.
func LoadString(code string) (*Hook, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	h := &Hook{L: L}
	registerHelpers(L)

	if err := L.DoString(code); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	h.classify = L.GetGlobal("classify")
	return h, nil
}

// Close releases the interpreter.
func (h *Hook) Close() {
	h.L.Close()
}

// HasClassify reports whether the script defined a classify callback.
func (h *Hook) HasClassify() bool {
	return h != nil && h.classify != nil && h.classify.Type() == lua.LTFunction
}

// Classify calls the script's classify(building) with the built-in
// result attached. The script may return a table overriding any of
// type, population, jobs, or density; nil keeps the built-in class.
func (h *Hook) Classify(tags map[string]string, height, area float64, builtin estimate.BuildingClass) (estimate.BuildingClass, error) {
	if !h.HasClassify() {
		return builtin, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	L := h.L

	obj := L.NewTable()
	tagTbl := L.NewTable()
	for k, v := range tags {
		tagTbl.RawSetString(k, lua.LString(v))
	}
	obj.RawSetString("tags", tagTbl)
	obj.RawSetString("height", lua.LNumber(height))
	obj.RawSetString("area", lua.LNumber(area))
	obj.RawSetString("volume", lua.LNumber(height*area))

	cls := L.NewTable()
	cls.RawSetString("type", lua.LString(builtin.Type))
	cls.RawSetString("population", lua.LNumber(builtin.Population))
	cls.RawSetString("jobs", lua.LNumber(builtin.Jobs))
	cls.RawSetString("density", lua.LNumber(builtin.Density))
	obj.RawSetString("class", cls)

	if err := L.CallByParam(lua.P{
		Fn:      h.classify,
		NRet:    1,
		Protect: true,
	}, obj); err != nil {
		return builtin, fmt.Errorf("classify callback error: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	if ret.Type() != lua.LTTable {
		return builtin, nil
	}

	out := builtin
	tbl := ret.(*lua.LTable)
	if v := tbl.RawGetString("type"); v.Type() == lua.LTString {
		out.Type = string(v.(lua.LString))
	}
	if v := tbl.RawGetString("population"); v.Type() == lua.LTNumber {
		out.Population = int(v.(lua.LNumber))
	}
	if v := tbl.RawGetString("jobs"); v.Type() == lua.LTNumber {
		out.Jobs = int(v.(lua.LNumber))
	}
	if v := tbl.RawGetString("density"); v.Type() == lua.LTNumber {
		out.Density = float64(v.(lua.LNumber))
	}
	return out, nil
}
