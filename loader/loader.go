// Package loader loads Lua story files into world definitions, vocabulary,
// categories and grammar declarations. The Lua VM is discarded after
// loading; nothing Lua survives into a parse.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lua "github.com/yuin/gopher-lua"
)

// DefaultPattern selects story files under the story directory.
const DefaultPattern = "**/*.lua"

// collector accumulates Lua definitions during file execution.
type collector struct {
	game       *lua.LTable
	rooms      []rawRoom
	entities   []rawEntity
	vocabulary []*lua.LTable
	categories []rawCategory
	grammar    []rawGrammar
	order      int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load discovers the story files under dir matching pattern (DefaultPattern
// when empty), runs them in a sandboxed VM, compiles the declarations and
// validates them.
func Load(dir, pattern string) (*Story, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid story pattern %q", pattern)
	}
	fsys := os.DirFS(dir)
	files, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("reading story directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no story files matching %s found in %s", pattern, dir)
	}
	return load(fsys, sortedLuaFiles(files))
}

// LoadSource loads a single story from source text, such as the demo story
// embedded in the binary.
func LoadSource(name, src string) (*Story, error) {
	L, coll := newVM()
	defer L.Close()
	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}
	story, err := finish(coll)
	if story != nil {
		story.Files = []string{name}
	}
	return story, err
}

func load(fsys fs.FS, files []string) (*Story, error) {
	L, coll := newVM()
	defer L.Close()

	for _, f := range files {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := L.DoString(string(src)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}
	story, err := finish(coll)
	if story != nil {
		story.Files = files
	}
	return story, err
}

func finish(coll *collector) (*Story, error) {
	story, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling story: %w", err)
	}
	if err := validate(story); err != nil {
		return story, err
	}
	return story, nil
}

func newVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the story or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}

// sortedLuaFiles puts a top-level game.lua first and sorts the rest by path.
func sortedLuaFiles(files []string) []string {
	var game string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			game = f
			continue
		}
		others = append(others, f)
	}
	sort.Slice(others, func(i, j int) bool {
		di, dj := path.Dir(others[i]), path.Dir(others[j])
		if di != dj {
			return di < dj
		}
		return others[i] < others[j]
	})
	if game != "" {
		return append([]string{game}, others...)
	}
	return others
}
