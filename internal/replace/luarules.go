package replace

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// LoadLua evaluates a Lua rule script and collects the rules it
// returns. The script must return a table of entries; each entry is
// either an array pair `{"wrong", "correct"}` or a record
// `{wrong = "...", correct = "..."}`. Entries missing either field are
// skipped and counted. Execution failures yield a LoadError.
//
// The state runs with base, table and string libraries only; a rule
// script has no business touching the filesystem or spawning anything.
func LoadLua(path string) ([]Rule, int, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	defer L.Close()

	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}

	if err := L.DoFile(path); err != nil {
		return nil, 0, &LoadError{Path: path, Err: err}
	}

	ret := L.Get(-1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, 0, &LoadError{
			Path: path,
			Err:  fmt.Errorf("script must return a table, got %s", ret.Type()),
		}
	}

	var rules []Rule
	skipped := 0

	tbl.ForEach(func(_, value lua.LValue) {
		entry, ok := value.(*lua.LTable)
		if !ok {
			skipped++
			return
		}
		rule, ok := ruleFromLuaTable(entry)
		if !ok {
			skipped++
			return
		}
		rules = append(rules, rule)
	})

	return rules, skipped, nil
}

// ruleFromLuaTable accepts either the array form {"wrong", "correct"}
// or the record form {wrong = ..., correct = ...}.
func ruleFromLuaTable(entry *lua.LTable) (Rule, bool) {
	wrong := luaString(entry.RawGetString("wrong"))
	correct := luaString(entry.RawGetString("correct"))
	if wrong == "" {
		wrong = luaString(entry.RawGetInt(1))
		correct = luaString(entry.RawGetInt(2))
	}
	if wrong == "" || correct == "" {
		return Rule{}, false
	}
	return Rule{Wrong: wrong, Correct: correct}, true
}

func luaString(v lua.LValue) string {
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}
