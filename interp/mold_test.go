package interp_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ren-core/ren/internal/corelog"
	"github.com/ren-core/ren/interp"
)

func TestMoldRendersEachHeart(t *testing.T) {
	eng := interp.New(interp.EngineOptions{Logger: corelog.Discard()})
	t.Cleanup(eng.Shutdown)

	block := interp.BlockCell(interp.NewArray(interp.Integer(1), interp.Integer(2)))

	got := []string{
		eng.MoldResult(interp.Integer(42)),
		eng.MoldResult(interp.Logic(true)),
		eng.MoldResult(interp.Logic(false)),
		eng.MoldResult(interp.TextCell("hi")),
		eng.MoldResult(block),
		eng.MoldResult(interp.Blank()),
	}
	want := []string{
		"42",
		"true",
		"false",
		`"hi"`,
		"[1 2]",
		"_",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mold output mismatch (-want +got):\n%s", diff)
	}
}

func TestMoldPushPopIsolatesNestedCalls(t *testing.T) {
	m := interp.NewMoldBuffer()
	mark := m.Push()
	m.Mold(interp.Integer(1))
	inner := m.MoldToString(interp.Integer(2))
	outerAndRest := m.Pop(mark)
	if inner != "2" {
		t.Errorf("inner mold = %q, want %q", inner, "2")
	}
	if outerAndRest != "1" {
		t.Errorf("outer mold = %q, want %q", outerAndRest, "1")
	}
}
