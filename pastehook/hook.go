// Package pastehook runs a sandboxed Lua script that may rewrite content
// before it is pasted.
//
// The script defines a global function rewrite(runs). Each run is a table
// {text = "...", ws = 0, style = "..."}. The function returns the new runs,
// or nil to paste the content unchanged. A returned run keeps the remaining
// properties of the input run at the same position.
package pastehook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/cornish/inkwell/props"
)

// DefaultTimeout bounds one script call.
const DefaultTimeout = 2 * time.Second

// ErrNoRewrite is returned when a script does not define rewrite.
var ErrNoRewrite = errors.New("script does not define a rewrite function")

// Hook is a loaded paste script. It is not safe for concurrent use.
type Hook struct {
	L       *lua.LState
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Hook.
type Option func(*Hook)

// WithTimeout limits how long one call may run.
func WithTimeout(d time.Duration) Option {
	return func(h *Hook) {
		h.timeout = d
	}
}

// WithLogger sets the logger behind the script's log function.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hook) {
		h.logger = l
	}
}

// Load reads a script from disk.
func Load(path string, opts ...Option) (*Hook, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h, err := New(string(src), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// New compiles and runs script source in a fresh sandbox.
func New(source string, opts ...Option) (*Hook, error) {
	h := &Hook{timeout: DefaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.L.SetGlobal("log", h.L.NewFunction(h.luaLog))

	err := h.withTimeout(func() error {
		return h.L.DoString(source)
	})
	if err != nil {
		h.Close()
		return nil, err
	}
	if fn := h.L.GetGlobal("rewrite"); fn.Type() != lua.LTFunction {
		h.Close()
		return nil, ErrNoRewrite
	}
	return h, nil
}

// openSafeLibraries opens base, table, string and math, without the loaders.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (h *Hook) luaLog(L *lua.LState) int {
	h.logger.Info("paste hook", slog.String("message", L.CheckString(1)))
	return 0
}

func (h *Hook) withTimeout(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()
	return fn()
}

// Rewrite passes runs through the script's rewrite function.
func (h *Hook) Rewrite(runs props.Runs) (props.Runs, error) {
	var ret lua.LValue
	err := h.withTimeout(func() error {
		if err := h.L.CallByParam(lua.P{
			Fn:      h.L.GetGlobal("rewrite"),
			NRet:    1,
			Protect: true,
		}, toTable(h.L, runs)); err != nil {
			return err
		}
		ret = h.L.Get(-1)
		h.L.Pop(1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ret == lua.LNil {
		return runs, nil
	}
	return fromTable(ret, runs)
}

// Close releases the Lua state.
func (h *Hook) Close() {
	if h.L != nil {
		h.L.Close()
		h.L = nil
	}
}

func toTable(L *lua.LState, runs props.Runs) *lua.LTable {
	t := L.NewTable()
	for _, r := range runs {
		rt := L.NewTable()
		rt.RawSetString("text", lua.LString(r.Text))
		rt.RawSetString("ws", lua.LNumber(r.Props.WS()))
		if s := r.Props.Style(); s != "" {
			rt.RawSetString("style", lua.LString(s))
		}
		t.Append(rt)
	}
	return t
}

func fromTable(lv lua.LValue, orig props.Runs) (props.Runs, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("rewrite returned %s, want a table", lv.Type())
	}
	var out props.Runs
	for i := 1; i <= tbl.Len(); i++ {
		rt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("run %d is not a table", i)
		}
		text, ok := rt.RawGetString("text").(lua.LString)
		if !ok {
			return nil, fmt.Errorf("run %d has no text", i)
		}

		p := props.NewSet()
		switch {
		case i-1 < len(orig):
			p = orig[i-1].Props.Clone()
		case len(orig) > 0:
			p = orig[len(orig)-1].Props.Clone()
		}
		if ws, ok := rt.RawGetString("ws").(lua.LNumber); ok && int(ws) != p.WS() {
			p.SetWS(int(ws))
		}
		if s, ok := rt.RawGetString("style").(lua.LString); ok {
			if s == "" {
				p.ClearStr(props.NamedStyle)
			} else {
				p.SetStr(props.NamedStyle, string(s))
			}
		}
		out = append(out, props.Run{Text: string(text), Props: p})
	}
	return out.Normalize(), nil
}
