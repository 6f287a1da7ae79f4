package averager

import "testing"

func TestAveragerPush(t *testing.T) {
	a := New(3, 0)

	a.Push(1.0)
	result := a.Average()
	expected := 1.0 / 3.0
	if abs(result-expected) > 1e-9 {
		t.Errorf("expected %f, got %f", expected, result)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestAveragerFillsWindow(t *testing.T) {
	a := New(3, 0)
	a.Push(1.0)
	a.Push(2.0)
	a.Push(3.0)

	got := a.Average()
	want := 2.0
	if abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestAveragerReplaceLastEqualsOriginalPush(t *testing.T) {
	a1 := New(4, 10)
	a1.Push(1.0)
	a1.Push(2.0)

	a2 := New(4, 10)
	a2.Push(1.0)
	a2.Push(99.0)
	a2.ReplaceLast(2.0)

	if abs(a1.Average()-a2.Average()) > 1e-9 {
		t.Errorf("replaceLast(%f) should match push(%f): got %f want %f", 2.0, 2.0, a2.Average(), a1.Average())
	}
}

func TestAveragerReset(t *testing.T) {
	a := New(3, 5.0)
	a.Push(1.0)
	a.Push(2.0)

	a.Reset(7.0)

	if got := a.Average(); got != 7.0 {
		t.Errorf("expected 7.0 after reset, got %f", got)
	}
}
