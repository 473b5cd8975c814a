// Package script hosts the Lua star filter: a user script that decides,
// star by star, what an export includes.
package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/nightsky-software/stardb-go/internal/catalog"
)

// Filter manages the Lua interpreter and the stardb filter API. A script
// assigns stardb.accept_star a function taking a star table and returning
// a boolean; without one the filter accepts everything.
type Filter struct {
	L      *lua.LState
	accept lua.LValue
	mu     sync.Mutex
}

func newFilter() *Filter {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	f := &Filter{L: L}
	f.registerAPI()
	return f
}

// NewFilterFromFile loads a filter script from a file.
func NewFilterFromFile(path string) (*Filter, error) {
	f := newFilter()
	if err := f.L.DoFile(path); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to load filter script: %w", err)
	}
	f.extractCallback()
	return f, nil
}

// NewFilterFromString loads a filter script from source text.
func NewFilterFromString(code string) (*Filter, error) {
	f := newFilter()
	if err := f.L.DoString(code); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to load filter script: %w", err)
	}
	f.extractCallback()
	return f, nil
}

// Close releases Lua resources.
func (f *Filter) Close() {
	f.L.Close()
}

func (f *Filter) registerAPI() {
	stardb := f.L.NewTable()
	stardb.RawSetString("version", lua.LString("1.0.0"))
	f.L.SetGlobal("stardb", stardb)
}

func (f *Filter) extractCallback() {
	stardb := f.L.GetGlobal("stardb")
	if stardb.Type() == lua.LTTable {
		f.accept = stardb.(*lua.LTable).RawGetString("accept_star")
	}
}

// Accept runs the script's accept_star callback for one star. The star is
// presented as a table with number, x, y, z, absmag, spectral, and name
// fields. Callbacks are serialized; the Lua state is not reentrant.
func (f *Filter) Accept(s *catalog.Star, name string) (bool, error) {
	if f.accept == nil || f.accept.Type() != lua.LTFunction {
		return true, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	star := f.L.NewTable()
	star.RawSetString("number", lua.LNumber(s.Number()))
	pos := s.Position()
	star.RawSetString("x", lua.LNumber(pos.X))
	star.RawSetString("y", lua.LNumber(pos.Y))
	star.RawSetString("z", lua.LNumber(pos.Z))
	star.RawSetString("absmag", lua.LNumber(s.AbsoluteMagnitude()))
	if d := s.Details(); d != nil {
		star.RawSetString("spectral", lua.LString(d.SpectralType()))
	}
	star.RawSetString("name", lua.LString(name))

	if err := f.L.CallByParam(lua.P{
		Fn:      f.accept,
		NRet:    1,
		Protect: true,
	}, star); err != nil {
		return false, fmt.Errorf("accept_star failed: %w", err)
	}

	ret := f.L.Get(-1)
	f.L.Pop(1)
	return lua.LVAsBool(ret), nil
}
