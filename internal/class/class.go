// Package class implements the Language's class model: class objects,
// member tables, visibility, and C3 linearization for multiple
// inheritance (§3.5).
//
// class deliberately knows nothing about internal/value or internal/ast:
// a Member's compiled body (a field initializer node, a method's callable)
// is stored as `any` so that value (which needs a *Class pointer on every
// Value) and ast (which needs to attach executable nodes to members) can
// both depend on class without class depending on them.
package class

import (
	"fmt"

	"github.com/sergeych/lyng-sub006/internal/source"
)

// Visibility is the access level of a declared member (§3.5).
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// Kind distinguishes what a Member stores.
type Kind int

const (
	FieldMember Kind = iota
	MethodMember
	PropertyMember
)

// Member is one slot in a class's member table: a field, a method, or a
// property with custom get/set (§3.5). The Value/Getter/Setter payloads
// are opaque to this package.
type Member struct {
	Name       string
	Kind       Kind
	Visibility Visibility
	Static     bool
	Mutable    bool // var field vs val field; meaningless for methods
	Abstract   bool
	Declaring  *Class
	Pos        source.Position

	// Value is the member's compiled body: an *ast.Function for a
	// method, an ast.Node initializer for a field, or nil for a header
	// parameter promoted with no further initializer.
	Value any
	// Getter/Setter hold property accessor callables (property members
	// only); Setter is nil for a read-only property.
	Getter any
	Setter any
}

// Class is a singleton, process-wide type object. User classes are built
// once at class-declaration time; built-in classes (Int, String, List, …)
// are built once at process init.
type Class struct {
	Name          string
	Parents       []*Class
	Linearization []*Class // C3 order, self first, §3.5
	Members       map[string]*Member
	Abstract      bool
	// IsObject marks a class declared with `object Name { ... }`: the
	// class and its single eager instance (§3.5).
	IsObject bool
	// IsEnum marks an enum class; Entries holds its singleton values in
	// declaration order, opaque `any` to avoid importing internal/value.
	IsEnum  bool
	Entries []any

	Pos source.Position
}

// New builds a class from its direct parents, computing the C3
// linearization. Returns an error if the parent set is inconsistent
// (no valid linearization exists).
func New(name string, parents []*Class, pos source.Position) (*Class, error) {
	c := &Class{
		Name:    name,
		Parents: parents,
		Members: make(map[string]*Member),
		Pos:     pos,
	}
	lin, err := linearize(c)
	if err != nil {
		return nil, err
	}
	c.Linearization = lin
	return c, nil
}

// linearize computes C3(c) = c + merge(L[P1], ..., L[Pn], [P1..Pn]).
func linearize(c *Class) ([]*Class, error) {
	if len(c.Parents) == 0 {
		return []*Class{c}, nil
	}
	lists := make([][]*Class, 0, len(c.Parents)+1)
	for _, p := range c.Parents {
		lists = append(lists, append([]*Class{}, p.Linearization...))
	}
	lists = append(lists, append([]*Class{}, c.Parents...))

	merged, err := merge(lists)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Name, err)
	}
	return append([]*Class{c}, merged...), nil
}

func merge(lists [][]*Class) ([]*Class, error) {
	var result []*Class
	lists = dropEmpty(lists)
	for len(lists) > 0 {
		var head *Class
		for _, l := range lists {
			candidate := l[0]
			if !inTail(candidate, lists) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("inconsistent linearization: cannot merge %v", classNames(lists))
		}
		result = append(result, head)
		for i, l := range lists {
			if len(l) > 0 && l[0] == head {
				lists[i] = l[1:]
			}
		}
		lists = dropEmpty(lists)
	}
	return result, nil
}

func dropEmpty(lists [][]*Class) [][]*Class {
	out := lists[:0]
	for _, l := range lists {
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}

func inTail(c *Class, lists [][]*Class) bool {
	for _, l := range lists {
		for i := 1; i < len(l); i++ {
			if l[i] == c {
				return true
			}
		}
	}
	return false
}

func classNames(lists [][]*Class) []string {
	var names []string
	for _, l := range lists {
		for _, c := range l {
			names = append(names, c.Name)
		}
	}
	return names
}

// Resolve looks up name along the class's C3 linearization; the first
// class that declares it wins ambiguous multiple-inheritance collisions
// (§3.5). Returns the member and the class that declares it, or nil.
func (c *Class) Resolve(name string) (*Member, *Class) {
	for _, ancestor := range c.Linearization {
		if m, ok := ancestor.Members[name]; ok {
			return m, ancestor
		}
	}
	return nil, nil
}

// ResolveQualified looks up name directly on a specific declaring class
// (`this@Type.x` / `(expr as Type).x`), bypassing linearization order.
func (c *Class) ResolveQualified(declarer *Class, name string) *Member {
	if m, ok := declarer.Members[name]; ok {
		return m
	}
	return nil
}

// IsSubclassOf reports whether other appears in c's linearization, i.e.
// c is other or a descendant of it — the runtime test backing `is`/`!is`
// (§4.3).
func (c *Class) IsSubclassOf(other *Class) bool {
	for _, a := range c.Linearization {
		if a == other {
			return true
		}
	}
	return false
}

// Declare adds a member declared directly on c. It does not check for
// redeclaration; the parser/semantic layer is responsible for rejecting
// duplicate declarations within a single class body.
func (c *Class) Declare(m *Member) {
	m.Declaring = c
	c.Members[m.Name] = m
}

// VisibleFrom reports whether a member declared on m.Declaring is
// observable from code whose enclosing class is `from` (nil for
// top-level/module code). Casts and qualified access never bypass this
// (§3.5, §8 "Visibility").
func (m *Member) VisibleFrom(from *Class) bool {
	switch m.Visibility {
	case Public:
		return true
	case Private:
		return from == m.Declaring
	case Protected:
		return from != nil && from.IsSubclassOf(m.Declaring)
	default:
		return false
	}
}

func (c *Class) String() string { return c.Name }
