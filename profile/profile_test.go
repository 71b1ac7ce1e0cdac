package profile

import "testing"

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/prof"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/prof", Quiet: true}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
}

func TestStart_Disabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{name: "zero", p: Profiler{}},
		{name: "unknown mode", p: New(WithMode("bogus"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := tt.p.Start()
			if _, ok := stop.(ignore); !ok {
				t.Fatalf("expected no-op stopper, got %T", stop)
			}

			stop.Stop()
		})
	}
}
