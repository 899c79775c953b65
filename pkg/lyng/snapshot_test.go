package lyng

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestEndToEndProgramOutput runs a handful of representative programs end
// to end and snapshots their captured output, the same whole-program
// assertion style the teacher's internal/interp/fixture_test.go uses
// go-snaps for.
func TestEndToEndProgramOutput(t *testing.T) {
	programs := []struct {
		name string
		src  string
	}{
		{"fizzbuzz", `
for (i in 1..15) {
  when {
    i % 15 == 0 -> println("FizzBuzz")
    i % 3 == 0 -> println("Fizz")
    i % 5 == 0 -> println("Buzz")
    else -> println(i)
  }
}
`},
		{"closures", `
fun counter() {
  var n = 0
  { -> n = n + 1; n }
}
val c = counter()
println(c())
println(c())
println(c())
`},
	}

	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			var buf bytes.Buffer
			e, err := New(WithOutput(&buf))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if _, err := e.Eval(p.src); err != nil {
				t.Fatalf("Eval: %v", err)
			}
			snaps.MatchSnapshot(t, buf.String())
		})
	}
}
