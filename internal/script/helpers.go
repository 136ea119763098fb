package script

import (
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// registerHelpers installs tag helper functions available to user
// scripts as globals.
func registerHelpers(L *lua.LState) {
	L.SetGlobal("trim", L.NewFunction(luaTrim))
	L.SetGlobal("parse_real", L.NewFunction(luaParseReal))
	L.SetGlobal("parse_bool", L.NewFunction(luaParseBool))
	L.SetGlobal("has_tag", L.NewFunction(luaHasTag))
}

func luaTrim(L *lua.LState) int {
	s := L.CheckString(1)
	L.Push(lua.LString(strings.TrimSpace(s)))
	return 1
}

// luaParseReal parses a string to a float with an optional default.
func luaParseReal(L *lua.LState) int {
	s := strings.TrimSpace(L.CheckString(1))
	def := float64(0)
	if L.GetTop() >= 2 {
		def = float64(L.CheckNumber(2))
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		L.Push(lua.LNumber(val))
	} else {
		L.Push(lua.LNumber(def))
	}
	return 1
}

// luaParseBool follows OSM conventions: any non-empty value other than
// the explicit negatives counts as true.
func luaParseBool(L *lua.LState) int {
	s := strings.ToLower(strings.TrimSpace(L.CheckString(1)))
	switch s {
	case "no", "false", "0", "off", "":
		L.Push(lua.LFalse)
	default:
		L.Push(lua.LTrue)
	}
	return 1
}

// luaHasTag checks a tags table for a non-empty key.
func luaHasTag(L *lua.LState) int {
	tags := L.CheckTable(1)
	key := L.CheckString(2)
	v := L.GetField(tags, key)
	L.Push(lua.LBool(v != lua.LNil && lua.LVAsString(v) != ""))
	return 1
}
