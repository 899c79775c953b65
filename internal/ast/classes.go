package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// FieldSpec is one field declared directly in a class body.
type FieldSpec struct {
	Name       string
	Mutable    bool
	Init       Node // nil: field starts Unset until first assignment
	Visibility class.Visibility
	Static     bool
}

// MethodSpec is one method declared directly in a class body.
type MethodSpec struct {
	Name       string
	Fn         *Function
	Visibility class.Visibility
	Abstract   bool
	Static     bool
}

// PropertySpec is one `get`/`set` property declared in a class body.
type PropertySpec struct {
	Name       string
	Getter     *Function
	Setter     *Function
	Visibility class.Visibility
}

// initMemberName is the reserved member slot an `init { ... }` block is
// stored under; it cannot collide with a user identifier.
const initMemberName = "<init>"

// ClassDecl implements `class Name(params) : Parent1, Parent2 { ... }`
// (§3.5, §4.4.2): building the *class.Class happens at Execute time so
// that parent expressions can reference classes bound earlier in the
// same scope, and methods close over the declaring scope like any other
// function value.
type ClassDecl struct {
	base
	Name         string
	ParentExprs  []Node
	HeaderParams []Param // primary constructor parameters, promoted to fields of the SAME name when PromoteHeader[i] is true
	PromoteHeader []bool
	Fields       []FieldSpec
	Methods      []MethodSpec
	Properties   []PropertySpec
	InitBlock    Node
	Abstract     bool
}

func NewClassDecl(pos source.Position, name string) *ClassDecl {
	return &ClassDecl{base: base{pos}, Name: name}
}

func (n *ClassDecl) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	parents := make([]*class.Class, 0, len(n.ParentExprs))
	for _, pe := range n.ParentExprs {
		pv, sig := pe.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		c, sig := classOf(pv, n.pos)
		if sig != nil {
			return value.Value{}, sig
		}
		parents = append(parents, c)
	}

	c, err := class.New(n.Name, parents, n.pos)
	if err != nil {
		return value.Value{}, errors.Throw(value.IllegalStateErr("class "+n.Name+": "+err.Error(), n.pos), n.pos)
	}
	c.Abstract = n.Abstract

	for _, f := range n.Fields {
		c.Declare(&class.Member{
			Name: f.Name, Kind: class.FieldMember, Visibility: f.Visibility,
			Static: f.Static, Mutable: f.Mutable, Pos: n.pos, Value: f.Init,
		})
	}
	for _, m := range n.Methods {
		m.Fn.Creator = s
		c.Declare(&class.Member{
			Name: m.Name, Kind: class.MethodMember, Visibility: m.Visibility,
			Static: m.Static, Abstract: m.Abstract, Pos: n.pos, Value: m.Fn,
		})
	}
	for _, p := range n.Properties {
		var getter, setter value.Invokable
		if p.Getter != nil {
			p.Getter.Creator = s
			getter = p.Getter
		}
		if p.Setter != nil {
			p.Setter.Creator = s
			setter = p.Setter
		}
		c.Declare(&class.Member{
			Name: p.Name, Kind: class.PropertyMember, Visibility: p.Visibility,
			Pos: n.pos, Getter: getter, Setter: setter,
		})
	}
	if n.InitBlock != nil {
		c.Declare(&class.Member{Name: initMemberName, Kind: class.FieldMember, Pos: n.pos, Value: n.InitBlock})
	}
	if len(n.HeaderParams) > 0 {
		c.Entries = append(c.Entries, headerParamsBox{Params: n.HeaderParams})
	}
	for i, hp := range n.HeaderParams {
		if i < len(n.PromoteHeader) && n.PromoteHeader[i] {
			if _, exists := c.Members[hp.Name]; !exists {
				c.Declare(&class.Member{Name: hp.Name, Kind: class.FieldMember, Visibility: class.Public, Mutable: true, Pos: n.pos})
			}
		}
	}

	classVal := value.NewClassValue(c)
	s.Declare(n.Name, classVal, false, class.Public)
	return classVal, nil
}

// ancestorsRootFirst returns c's linearization reversed: root (Obj) to
// derived, the order §4.4.2 construction proceeds in.
func ancestorsRootFirst(c *class.Class) []*class.Class {
	n := len(c.Linearization)
	out := make([]*class.Class, n)
	for i, a := range c.Linearization {
		out[n-1-i] = a
	}
	return out
}

// instantiate implements §4.4.2's four-state construction: allocate
// per-declaring-class field storage, bind the instantiated class's own
// header params, evaluate field initialisers and run init blocks along
// the linearization root-to-derived so a diamond parent is visited
// exactly once and later classes observe fully-initialised earlier
// ones. Only the most-derived class's header params are bound directly
// from call args; ancestor classes see their own fields at their
// declared (possibly Unset) initial values — full super(...) argument
// forwarding is out of scope (see DESIGN.md).
func instantiate(s *scope.Scope, c *class.Class, args value.CallArgs, pos source.Position) (value.Value, *errors.Signal) {
	if c.Abstract {
		return value.Value{}, errors.Throw(value.IllegalStateErr("cannot instantiate abstract class "+c.Name, pos), pos)
	}
	inst := value.NewInstance(c)
	instData := inst.Instance()

	for _, ancestor := range ancestorsRootFirst(c) {
		ctorScope := scope.New(s)
		ctorScope.ThisObj = inst

		if ancestor == c {
			if decl, ok := headerParamsOf(c); ok {
				fn := &Function{Params: decl}
				if sig := fn.bindParams(ctorScope, args); sig != nil {
					scope.Release(ctorScope)
					return value.Value{}, sig
				}
			}
		}

		for name, m := range ancestor.Members {
			if m.Kind != class.FieldMember || m.Declaring != ancestor || m.Static || name == initMemberName {
				continue
			}
			var v value.Value
			if m.Value != nil {
				initNode, ok := m.Value.(Node)
				if ok {
					var sig *errors.Signal
					v, sig = initNode.Execute(ctorScope)
					if sig != nil {
						scope.Release(ctorScope)
						return value.Value{}, sig
					}
				}
			} else if r, ok := ctorScope.Local(name); ok {
				v = r.Value // promoted header param
			} else {
				v = value.Unset
			}
			instData.Set(ancestor, name, v)
		}

		if initMember, ok := ancestor.Members[initMemberName]; ok {
			if block, ok := initMember.Value.(Node); ok {
				if _, sig := block.Execute(ctorScope); sig != nil {
					scope.Release(ctorScope)
					return value.Value{}, sig
				}
			}
		}
		scope.Release(ctorScope)
	}

	return inst, nil
}

// headerParamsBox stashes a class's primary-constructor parameter list
// on class.Class.Entries (an opaque `any` bag class.Class already
// exposes for this reason: it must not import internal/ast).
type headerParamsBox struct{ Params []Param }

func headerParamsOf(c *class.Class) ([]Param, bool) {
	for _, e := range c.Entries {
		if box, ok := e.(headerParamsBox); ok {
			return box.Params, true
		}
	}
	return nil, false
}

// EnumDecl implements `enum class Name { A, B, C }` (§3.5): Name
// becomes a class with IsEnum=true; each entry is a singleton Instance
// exposed as a static member (`Name.A`) and recorded on c.Entries in
// declaration order.
type EnumDecl struct {
	base
	Name    string
	Entries []string
}

func NewEnumDecl(pos source.Position, name string, entries []string) *EnumDecl {
	return &EnumDecl{base: base{pos}, Name: name, Entries: entries}
}

func (n *EnumDecl) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	c, err := class.New(n.Name, []*class.Class{value.ClassObj}, n.pos)
	if err != nil {
		return value.Value{}, errors.Throw(value.IllegalStateErr(err.Error(), n.pos), n.pos)
	}
	c.IsEnum = true

	for _, name := range n.Entries {
		entryVal := value.NewInstance(c)
		c.Entries = append(c.Entries, entryVal)
		c.Declare(&class.Member{
			Name: name, Kind: class.FieldMember, Visibility: class.Public,
			Static: true, Pos: n.pos, Value: entryVal,
		})
	}

	classVal := value.NewClassValue(c)
	s.Declare(n.Name, classVal, false, class.Public)
	return classVal, nil
}

// ObjectDecl implements `object Name { ... }` (§3.5): a class with a
// single eagerly-constructed instance bound to Name directly (not to
// Name's class — referencing `Name` yields the singleton itself).
type ObjectDecl struct {
	base
	Decl *ClassDecl
}

func NewObjectDecl(pos source.Position, decl *ClassDecl) *ObjectDecl {
	return &ObjectDecl{base: base{pos}, Decl: decl}
}

func (n *ObjectDecl) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	classVal, sig := n.Decl.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	c := classVal.AsClass()
	c.IsObject = true
	inst, sig := instantiate(s, c, value.CallArgs{}, n.pos)
	if sig != nil {
		return value.Value{}, sig
	}
	s.Declare(n.Decl.Name, inst, false, class.Public)
	return inst, nil
}
