package value

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// collator backs String's locale-aware ordering (§4.3 rule 7's
// `compareTo`/`<=>`): a single language.Und collator, the same
// `collate.New(tag)` call the teacher's CompareText/SameText builtins
// make (internal/interp/builtins_strings_compare.go), just without a
// per-call locale argument since the core language has no locale
// parameter on `<=>` itself.
var collator = collate.New(language.Und)

func stringCompare(a, b string) int { return collator.CompareString(a, b) }

func init() {
	declareNative(ClassString, "upper", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return NewString(cases.Upper(language.Und).String(recv.Str())), nil
	})
	declareNative(ClassString, "lower", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return NewString(cases.Lower(language.Und).String(recv.Str())), nil
	})
	declareNative(ClassString, "trimmed", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return NewString(strings.TrimSpace(recv.Str())), nil
	})
	// normalize() applies Unicode NFC normalisation (§3.3 "String
	// (immutable, Unicode)"), the same golang.org/x/text/unicode/norm
	// import the teacher reaches for in string_helpers.go.
	declareNative(ClassString, "normalize", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return NewString(norm.NFC.String(recv.Str())), nil
	})
	declareNative(ClassString, "sameText", 1, false, func(recv Value, args CallArgs) (Value, *errors.Signal) {
		if len(args.Positional) == 0 || args.Positional[0].Class != ClassString {
			return Value{}, errors.Throw(IllegalArgumentErr("sameText requires a String argument", source.Position{}), source.Position{})
		}
		ci := collate.New(language.Und, collate.IgnoreCase)
		return NewBoolValue(ci.CompareString(recv.Str(), args.Positional[0].Str()) == 0), nil
	})
}
