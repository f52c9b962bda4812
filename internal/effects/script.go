package effects

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

const (
	scriptTimeout     = 2 * time.Second
	scriptMaxSteps    = 10000
	scriptDefaultHold = 100 * time.Millisecond
)

// ScriptEffect is an effect whose steps are produced by a Lua script.
//
// The script sees:
//
//	start        table {on, brightness, temperature} of the first light
//	light_count  number of participating lights
//	params       table of the run's Params (times, cycles, ...)
//	step{on=true, brightness=, temperature=, hold=0.1}
//	hold(seconds)  extend the previous step's hold
//
// Omitted step fields carry over from the previous step (or start).
type ScriptEffect struct {
	name   string
	source string
	params Params
}

// LoadScript reads and compiles a Lua effect. The effect is named after
// the file without its extension.
func LoadScript(path string) (*ScriptEffect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewScript(name, string(data))
}

// NewScript compiles source as an effect called name.
func NewScript(name, source string) (*ScriptEffect, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if _, err := L.LoadString(source); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &ScriptEffect{name: name, source: source}, nil
}

// Name is the script's effect name.
func (e *ScriptEffect) Name() string { return e.name }

// WithParams returns a copy of the effect that exposes p to the script.
func (e *ScriptEffect) WithParams(p Params) Effect {
	c := *e
	c.params = p
	return &c
}

// Steps runs the script and collects the steps it emits.
func (e *ScriptEffect) Steps(ctx context.Context, snapshot []keylight.LightState) ([]Step, error) {
	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := openSafeLibs(L); err != nil {
		return nil, err
	}
	L.SetContext(ctx)

	start := keylight.DefaultState()
	if len(snapshot) > 0 {
		start = snapshot[0]
	}
	b := &scriptBuilder{last: start}

	L.SetGlobal("start", stateTable(L, start))
	L.SetGlobal("light_count", lua.LNumber(len(snapshot)))
	L.SetGlobal("params", paramsTable(L, e.params))
	L.SetGlobal("step", L.NewFunction(b.step))
	L.SetGlobal("hold", L.NewFunction(b.hold))

	if err := L.DoString(e.source); err != nil {
		return nil, fmt.Errorf("script %s: %w", e.name, err)
	}
	return b.steps, nil
}

type scriptBuilder struct {
	last  keylight.LightState
	steps []Step
}

func (b *scriptBuilder) step(L *lua.LState) int {
	tbl := L.OptTable(1, L.NewTable())
	if len(b.steps) >= scriptMaxSteps {
		L.RaiseError("too many steps (max %d)", scriptMaxSteps)
		return 0
	}

	s := b.last
	s.On = true
	if v := tbl.RawGetString("on"); v != lua.LNil {
		s.On = lua.LVAsBool(v)
	}
	s.Brightness = intField(L, tbl, "brightness", s.Brightness)
	s.Temperature = intField(L, tbl, "temperature", s.Temperature)

	hold := scriptDefaultHold
	if v := tbl.RawGetString("hold"); v != lua.LNil {
		n, ok := v.(lua.LNumber)
		if !ok || n < 0 {
			L.ArgError(1, "hold must be a non-negative number of seconds")
			return 0
		}
		hold = time.Duration(float64(n) * float64(time.Second))
	}

	s = s.Clamp()
	b.last = s
	b.steps = append(b.steps, Step{State: s, Hold: hold})
	return 0
}

func (b *scriptBuilder) hold(L *lua.LState) int {
	seconds := L.CheckNumber(1)
	if seconds < 0 {
		L.ArgError(1, "hold must be a non-negative number of seconds")
		return 0
	}
	if len(b.steps) == 0 {
		L.RaiseError("hold called before any step")
		return 0
	}
	b.steps[len(b.steps)-1].Hold += time.Duration(float64(seconds) * float64(time.Second))
	return 0
}

func intField(L *lua.LState, tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if v == lua.LNil {
		return def
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(1, key+" must be a number")
		return def
	}
	return int(n)
}

func stateTable(L *lua.LState, s keylight.LightState) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("on", lua.LBool(s.On))
	t.RawSetString("brightness", lua.LNumber(s.Brightness))
	t.RawSetString("temperature", lua.LNumber(s.Temperature))
	t.RawSetString("kelvin", lua.LNumber(s.Kelvin()))
	return t
}

func paramsTable(L *lua.LState, p Params) *lua.LTable {
	t := L.NewTable()
	set := func(key string, v int) {
		if v != 0 {
			t.RawSetString(key, lua.LNumber(v))
		}
	}
	set("times", p.Times)
	set("cycles", p.Cycles)
	set("step_ms", p.StepMS)
	set("flashes", p.Flashes)
	set("steps", p.Steps)
	if p.Interval > 0 {
		t.RawSetString("interval", lua.LNumber(p.Interval))
	}
	if p.Target != nil {
		t.RawSetString("target", lua.LNumber(*p.Target))
	}
	return t
}

// openSafeLibs opens the base, table, string and math libraries and strips
// the base functions that touch the filesystem.
func openSafeLibs(L *lua.LState) error {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("opening lua %s library: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	return nil
}
