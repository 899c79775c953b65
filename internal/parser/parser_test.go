package parser

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

func run(t *testing.T, src string) (result string, errs []string) {
	t.Helper()
	prog, diags := ParseProgram(source.New("test", src))
	for _, d := range diags {
		errs = append(errs, d.Message)
	}
	if len(errs) > 0 {
		return "", errs
	}
	root := scope.New(nil)
	v, sig := prog.Execute(root)
	if sig != nil {
		return "", []string{sig.Error()}
	}
	return value.ToDisplayString(v), nil
}

func TestParseArithmeticPrecedence(t *testing.T) {
	out, errs := run(t, "2 + 3 * 4")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "14" {
		t.Fatalf("expected 14, got %s", out)
	}
}

func TestParseIfElseAsExpression(t *testing.T) {
	out, errs := run(t, "val x = if (1 < 2) \"yes\" else \"no\"\nx")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "yes" {
		t.Fatalf("expected yes, got %s", out)
	}
}

func TestParseWhileLoopWithBreakValue(t *testing.T) {
	out, errs := run(t, `
var i = 0
val result = while (true) {
  i = i + 1
  if (i == 5) break i * 10
}
result
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "50" {
		t.Fatalf("expected 50, got %s", out)
	}
}

func TestParseForOverIntRange(t *testing.T) {
	out, errs := run(t, `
var sum = 0
for (i in 1..5) {
  sum = sum + i
}
sum
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "15" {
		t.Fatalf("expected 15, got %s", out)
	}
}

func TestParseLabelledBreakTargetsOuterLoop(t *testing.T) {
	out, errs := run(t, `
var hits = 0
outer@ for (i in 1..3) {
  for (j in 1..3) {
    hits = hits + 1
    if (j == 2) break@outer
  }
}
hits
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "2" {
		t.Fatalf("expected 2, got %s", out)
	}
}

func TestParseTryCatchByUserDeclaredClass(t *testing.T) {
	out, errs := run(t, `
class Boom : Exception("boom") { }

val result = try {
  throw Boom()
  "unreached"
} catch (e: Boom) {
  "caught"
}
result
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "caught" {
		t.Fatalf("expected caught, got %s", out)
	}
}

func TestParseDestructureAssignWithSplat(t *testing.T) {
	out, errs := run(t, `
val list = [1, 2, 3, 4, 5]
var first = 0
var rest = []
var last = 0
[first, rest..., last] = list
rest
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "[2, 3, 4]" {
		t.Fatalf("expected [2, 3, 4], got %s", out)
	}
}

func TestParseFunctionDeclAndCall(t *testing.T) {
	out, errs := run(t, `
fun add(a, b) { a + b }
add(3, 4)
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "7" {
		t.Fatalf("expected 7, got %s", out)
	}
}

func TestParseNonLocalReturnFromLambda(t *testing.T) {
	out, errs := run(t, `
fun firstEven(items) {
  items.forEach { if (it % 2 == 0) return@firstEven it }
  -1
}
firstEven([1, 3, 4, 5])
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "4" {
		t.Fatalf("expected 4, got %s", out)
	}
}

func TestParseWhenWithMixedConditions(t *testing.T) {
	out, errs := run(t, `
fun describe(x) {
  when (x) {
    1, 2 -> "small"
    in 3..10 -> "medium"
    else -> "large"
  }
}
describe(2) + "/" + describe(5) + "/" + describe(99)
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "small/medium/large" {
		t.Fatalf("unexpected result: %s", out)
	}
}

func TestSyntaxErrorsAreRecoveredAndAllReported(t *testing.T) {
	_, errs := run(t, "val x = \nval y = \n")
	if len(errs) == 0 {
		t.Fatal("expected syntax errors to be reported")
	}
}
