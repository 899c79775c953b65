package value

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// must builds a class or panics — used only at package init for the
// fixed, process-wide singleton class graph (§5), where a linearization
// failure would be a bug in this file, not a user program.
func must(name string, parents ...*class.Class) *class.Class {
	c, err := class.New(name, parents, source.Position{})
	if err != nil {
		panic("builtin class " + name + ": " + err.Error())
	}
	return c
}

// Built-in singleton classes (§3.3). ClassObj is the universal root.
var (
	ClassObj = must("Obj")

	ClassInt    = must("Int", ClassObj)
	ClassReal   = must("Real", ClassObj)
	ClassBool   = must("Bool", ClassObj)
	ClassChar   = must("Char", ClassObj)
	ClassString = must("String", ClassObj)
	ClassVoid   = must("Void", ClassObj)
	ClassNull   = must("Null", ClassObj)
	ClassUnset  = must("Unset", ClassObj)

	ClassIterable   = must("Iterable", ClassObj)
	ClassCollection = must("Collection", ClassIterable)
	ClassArray      = must("Array", ClassCollection)
	ClassList       = must("List", ClassArray)
	ClassSet        = must("Set", ClassCollection)
	ClassMap        = must("Map", ClassCollection)
	ClassRange      = must("Range", ClassIterable)
	ClassBuffer     = must("Buffer", ClassArray)
	ClassIterator   = must("Iterator", ClassObj)

	ClassCallable = must("Callable", ClassObj)
	ClassClass    = must("Class", ClassObj)
	ClassInstance = must("Instance", ClassObj)
	ClassEntry    = must("Entry", ClassObj)

	// Concurrency surface (§5): launch/flow/Mutex produce values of these
	// classes. Methods are installed by internal/ast, the first package
	// above both value and coroutine that can import both without a
	// cycle; this file only reserves the class identities.
	ClassDeferred = must("Deferred", ClassObj)
	ClassFlow     = must("Flow", ClassObj)
	ClassMutex    = must("Mutex", ClassObj)

	// Exception family (§7). Exception itself is the catchable root;
	// every taxonomy member descends from it directly, matching spec.md's
	// flat "each is a class descending from Exception" wording.
	ClassException              = must("Exception", ClassObj)
	ClassNullPointerError       = must("NullPointerError", ClassException)
	ClassAssertionFailed        = must("AssertionFailed", ClassException)
	ClassClassCastError         = must("ClassCastError", ClassException)
	ClassIndexOutOfBoundsError  = must("IndexOutOfBoundsError", ClassException)
	ClassIllegalArgumentError   = must("IllegalArgumentError", ClassException)
	ClassIllegalAssignmentError = must("IllegalAssignmentError", ClassException)
	ClassSymbolNotDefinedError  = must("SymbolNotDefinedError", ClassException)
	ClassIterationEndException  = must("IterationEndException", ClassException)
	ClassAccessError            = must("AccessError", ClassException)
	ClassIllegalOperationError  = must("IllegalOperationError", ClassException)
	ClassIllegalStateError      = must("IllegalStateError", ClassException)
	ClassNotImplementedError    = must("NotImplementedError", ClassException)
	ClassUnknownException       = must("UnknownException", ClassException)
)

// ExceptionData is the payload of any Exception-family value.
type ExceptionData struct {
	Message string
	Cause   *Value
	Origin  source.Position
}

// NewException builds a catchable error value of class c (c must be
// ClassException or a descendant) with message, optional cause, and the
// position where it was raised (§6.4 "a structured value with class,
// message, optional cause, and an origin position").
func NewException(c *class.Class, message string, cause *Value, origin source.Position) Value {
	return Value{Class: c, Data: &ExceptionData{Message: message, Cause: cause, Origin: origin}}
}

// Exception extracts the payload, or nil if v is not an exception value.
func (v Value) Exception() *ExceptionData {
	if d, ok := v.Data.(*ExceptionData); ok {
		return d
	}
	return nil
}

// AssertionFailed/IllegalArgumentError/IllegalStateError back `assert`,
// `require`, `check` (§7).
func AssertionFailedErr(msg string, pos source.Position) Value {
	return NewException(ClassAssertionFailed, msg, nil, pos)
}
func IllegalArgumentErr(msg string, pos source.Position) Value {
	return NewException(ClassIllegalArgumentError, msg, nil, pos)
}
func IllegalStateErr(msg string, pos source.Position) Value {
	return NewException(ClassIllegalStateError, msg, nil, pos)
}
func IndexOutOfBoundsErr(msg string, pos source.Position) Value {
	return NewException(ClassIndexOutOfBoundsError, msg, nil, pos)
}
func SymbolNotDefinedErr(msg string, pos source.Position) Value {
	return NewException(ClassSymbolNotDefinedError, msg, nil, pos)
}
func NullPointerErr(msg string, pos source.Position) Value {
	return NewException(ClassNullPointerError, msg, nil, pos)
}
func ClassCastErr(msg string, pos source.Position) Value {
	return NewException(ClassClassCastError, msg, nil, pos)
}
func IllegalOperationErr(msg string, pos source.Position) Value {
	return NewException(ClassIllegalOperationError, msg, nil, pos)
}
func IterationEndErr(pos source.Position) Value {
	return NewException(ClassIterationEndException, "iteration has no more elements", nil, pos)
}
