// Package module implements the Module/Import component (§6.1, §8):
// package registration, lazy initialisation, export-symbol copying on
// `import path.*`, and the manifest/JSON bridging a host embedding this
// runtime uses to hand packages across the native boundary.
//
// Grounded on the teacher's unit system (internal/units: register a
// loader by name, initialise lazily and once, cache the result) but
// reworked from DWScript's uses-clause/compile-unit model to lyng's
// simpler "a package is just a scope of public bindings, copied wholesale
// into the importer" semantics (§4.2, §6.1).
package module

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/parser"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// loader produces a package's exported scope on first use. It receives
// the registry's shared Root scope so a lyng-source package can resolve
// the same globals (launch/flow/Mutex, host-registered functions) a
// top-level program would.
type loader func(root *scope.Scope) (*scope.Scope, *errors.Signal)

type entry struct {
	load    loader
	exports []string // empty = export everything Public
}

// Registry is the package/import table a host (pkg/lyng.Engine, the CLI,
// or a test) builds up and installs as ast.DefaultResolver. It is safe
// for concurrent registration and resolution.
type Registry struct {
	mu       sync.Mutex
	packages map[string]entry
	cache    map[string]*scope.Scope

	// Root seeds every lyng-source package's module scope (§6.2 "the
	// module and root" in the resolution order). Defaults to
	// ast.NewRootScope() so packages see launch/flow/Mutex even when the
	// host registers nothing else.
	Root *scope.Scope
}

// NewRegistry builds an empty registry and installs it as the default
// import resolver every *ast.Import node falls back to (see
// ast.DefaultResolver). A process normally owns exactly one Registry;
// building a second one simply takes over global import resolution,
// which is fine for isolated tests.
func NewRegistry() *Registry {
	r := &Registry{
		packages: make(map[string]entry),
		cache:    make(map[string]*scope.Scope),
		Root:     ast.NewRootScope(),
	}
	ast.DefaultResolver = r.Resolve
	return r
}

// RegisterPackage registers a host-native package: build runs at most
// once, lazily, on first import (§6.1 "lazy init"). Used for packages a
// Go host assembles directly out of RegisterFunction/RegisterProperty
// calls rather than lyng source (see pkg/lyng.Engine.RegisterPackage).
func (r *Registry) RegisterPackage(name string, build func() *scope.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[name] = entry{load: func(*scope.Scope) (*scope.Scope, *errors.Signal) {
		return build(), nil
	}}
}

// RegisterSource registers a package implemented in lyng source, parsed
// and executed the first time it is imported. Its own top-level
// `var`/`val`/`fun`/`class` declarations become its exported scope,
// exactly like a program's own top-level block (§6.1).
func (r *Registry) RegisterSource(name, src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[name] = entry{load: func(root *scope.Scope) (*scope.Scope, *errors.Signal) {
		prog, diags := parser.ParseProgram(source.New(name, src))
		if len(diags) > 0 {
			msgs := make([]string, len(diags))
			for i, d := range diags {
				msgs[i] = d.Message
			}
			return nil, errors.Throw(
				value.IllegalArgumentErr(fmt.Sprintf("package %q failed to parse: %s", name, strings.Join(msgs, "; ")), source.Position{}),
				source.Position{},
			)
		}
		pkgScope := scope.New(root)
		if _, sig := prog.Execute(pkgScope); sig != nil {
			return nil, sig
		}
		return pkgScope, nil
	}}
}

// RegisterManifest loads a package.yaml-style manifest plus its entry
// source and registers the package under the manifest's declared name,
// restricting what `import path.*` copies to the manifest's Exports list
// when one is given (an empty list exports everything Public, matching
// RegisterSource's default).
func (r *Registry) RegisterManifest(manifestYAML, entrySource string) (*Manifest, error) {
	m, err := ParseManifest([]byte(manifestYAML))
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.packages[m.Name] = entry{
		exports: m.Exports,
		load: func(root *scope.Scope) (*scope.Scope, *errors.Signal) {
			prog, diags := parser.ParseProgram(source.New(m.Name, entrySource))
			if len(diags) > 0 {
				msgs := make([]string, len(diags))
				for i, d := range diags {
					msgs[i] = d.Message
				}
				return nil, errors.Throw(
					value.IllegalArgumentErr(fmt.Sprintf("package %q failed to parse: %s", m.Name, strings.Join(msgs, "; ")), source.Position{}),
					source.Position{},
				)
			}
			pkgScope := scope.New(root)
			if _, sig := prog.Execute(pkgScope); sig != nil {
				return nil, sig
			}
			return pkgScope, nil
		},
	}
	r.mu.Unlock()
	return m, nil
}

// Resolve implements ast.DefaultResolver's signature: given an import
// path (its trailing ".*" stripped, since §4.2 only supports whole-
// package import), it lazily builds the package's scope on first use and
// caches it for every import thereafter (§6.1 "register, lazily
// initialize, cache").
func (r *Registry) Resolve(path string) (*scope.Scope, *errors.Signal) {
	name := strings.TrimSuffix(path, ".*")

	r.mu.Lock()
	if s, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return s, nil
	}
	e, ok := r.packages[name]
	r.mu.Unlock()
	if !ok {
		return nil, errors.Throw(
			value.IllegalArgumentErr(fmt.Sprintf("package %q is not registered", name), source.Position{}),
			source.Position{},
		)
	}

	s, sig := e.load(r.Root)
	if sig != nil {
		return nil, sig
	}
	if len(e.exports) > 0 {
		s = filterExports(s, e.exports)
	}

	r.mu.Lock()
	r.cache[name] = s
	r.mu.Unlock()
	return s, nil
}

// filterExports copies only the named bindings out of a loaded package
// scope, used when a manifest declares an explicit Exports list instead
// of exporting every Public top-level binding.
func filterExports(s *scope.Scope, names []string) *scope.Scope {
	out := scope.New(nil)
	all := s.AllLocal()
	for _, n := range names {
		if rec, ok := all[n]; ok {
			out.Declare(n, rec.Value, rec.Mutable, rec.Visibility)
		}
	}
	return out
}
