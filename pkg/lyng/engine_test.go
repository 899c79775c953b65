package lyng

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestEvalReturnsLastExpressionValue(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Eval("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Value.Int() != 14 || !res.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEvalCapturesPrintlnOutput(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(WithOutput(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Eval(`println("hello")`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if strings.TrimSpace(res.Output) != "hello" {
		t.Fatalf("expected captured output 'hello', got %q", res.Output)
	}
	if strings.TrimSpace(buf.String()) != "hello" {
		t.Fatalf("expected SetOutput's writer to see it too, got %q", buf.String())
	}
}

func TestRegisterFunctionIsCallableFromScript(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.RegisterFunction("double", func(x int64) int64 { return x * 2 }); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	res, err := e.Eval("double(21)")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Value.Int() != 42 {
		t.Fatalf("expected 42, got %d", res.Value.Int())
	}
}

func TestRegisterFunctionRejectsDuplicateNames(t *testing.T) {
	e, _ := New()
	if err := e.RegisterFunction("f", func() {}); err != nil {
		t.Fatalf("first RegisterFunction: %v", err)
	}
	if err := e.RegisterFunction("f", func() {}); err == nil {
		t.Fatal("expected an error registering a duplicate name")
	}
}

func TestRegisterFunctionRejectsUnsupportedSignature(t *testing.T) {
	e, _ := New()
	if err := e.RegisterFunction("bad", func(ch chan int) {}); err == nil {
		t.Fatal("expected an error for an unsupported parameter type")
	}
}

func TestWithTypeCheckRejectsRealArgumentForIntParam(t *testing.T) {
	e, err := New(WithTypeCheck(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.RegisterFunction("needsInt", func(x int64) int64 { return x }); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	if _, err := e.Eval("needsInt(1.5)"); err == nil {
		t.Fatal("expected strict mode to reject a Real argument for an Int parameter")
	}
}

func TestRegisterPropertyIsReadableFromScript(t *testing.T) {
	e, _ := New()
	if err := e.RegisterProperty("version", func() value.Value { return value.NewString("1.0") }); err != nil {
		t.Fatalf("RegisterProperty: %v", err)
	}
	res, err := e.Eval("version")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Value.Str() != "1.0" {
		t.Fatalf("expected '1.0', got %s", res.Value.Str())
	}
}

func TestEvalContextCancelsOnExpiredDeadline(t *testing.T) {
	e, _ := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	if _, err := e.EvalContext(ctx, "1 + 1"); err == nil {
		t.Fatal("expected a context-deadline error")
	}
}
