package tablz

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestLag(t *testing.T) {
	t.Run("Shifts Toward Past", func(t *testing.T) {
		l := NewLag(2)
		out, err := l.Transform(context.Background(), Floats("a", 1, 2, 3, 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.IsNull(0) || !out.IsNull(1) {
			t.Error("vacated positions should be missing")
		}
		if out.Float(2) != 1 || out.Float(3) != 2 {
			t.Errorf("unexpected values: %v", out.Float64s())
		}
	})

	t.Run("Fill Value", func(t *testing.T) {
		l := NewLag(1).WithFillValue(-1)
		out, err := l.Transform(context.Background(), Floats("a", 1, 2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != -1 {
			t.Errorf("expected -1, got %v", out.Float(0))
		}
	})

	t.Run("Negative Lag Looks Forward", func(t *testing.T) {
		l := NewLag(-1)
		out, err := l.Transform(context.Background(), Floats("a", 1, 2, 3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != 2 || !out.IsNull(2) {
			t.Errorf("unexpected values: %v", out.Float64s())
		}
	})

	t.Run("Fit Free Contract", func(t *testing.T) {
		l := NewLag(1)
		if l.RequiresFit() || !l.Fitted() {
			t.Error("lag should be fit free")
		}
	})
}

func TestDiff(t *testing.T) {
	t.Run("Invalid Config", func(t *testing.T) {
		if _, err := NewDiff(0, 1); !errors.Is(err, ErrConflictingConfig) {
			t.Errorf("expected ErrConflictingConfig, got %v", err)
		}
		if _, err := NewDiff(1, 0); !errors.Is(err, ErrConflictingConfig) {
			t.Errorf("expected ErrConflictingConfig, got %v", err)
		}
	})

	t.Run("First Order", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, 3, 6, 10)
		out, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.IsNull(0) {
			t.Error("first position should be missing")
		}
		if out.Float(1) != 2 || out.Float(2) != 3 || out.Float(3) != 4 {
			t.Errorf("unexpected values: %v", out.Float64s())
		}
	})

	t.Run("Second Order", func(t *testing.T) {
		d, err := NewDiff(2, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, 3, 6, 10)
		out, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.IsNull(0) || !out.IsNull(1) {
			t.Error("first two positions should be missing")
		}
		if out.Float(2) != 1 || out.Float(3) != 1 {
			t.Errorf("unexpected values: %v", out.Float64s())
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 2, 5, 3, 8, 13)
		diffed, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		back, err := d.InverseTransform(context.Background(), diffed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !back.Equal(s) {
			t.Errorf("round trip mismatch: %v vs %v", back.Float64s(), s.Float64s())
		}
	})

	t.Run("Seasonal Round Trip", func(t *testing.T) {
		d, err := NewDiff(1, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, 2, 4, 7, 11, 16)
		diffed, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		back, err := d.InverseTransform(context.Background(), diffed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !back.Equal(s) {
			t.Errorf("round trip mismatch: %v vs %v", back.Float64s(), s.Float64s())
		}
	})

	t.Run("Second Order Round Trip", func(t *testing.T) {
		d, err := NewDiff(2, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, 4, 9, 16, 25)
		diffed, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		back, err := d.InverseTransform(context.Background(), diffed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !back.Equal(s) {
			t.Errorf("round trip mismatch: %v vs %v", back.Float64s(), s.Float64s())
		}
	})

	t.Run("Transform Before Fit", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := d.Transform(context.Background(), Floats("a", 1)); !errors.Is(err, ErrNotFitted) {
			t.Errorf("expected ErrNotFitted, got %v", err)
		}
		if _, err := d.InverseTransform(context.Background(), Floats("a", 1)); !errors.Is(err, ErrNotFitted) {
			t.Errorf("expected ErrNotFitted, got %v", err)
		}
	})

	t.Run("String Column Rejected At Fit", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := d.Fit(context.Background(), Strings("c", "x")); err == nil {
			t.Fatal("expected error for string input")
		}
		if d.Fitted() {
			t.Error("failed fit should leave the transformer unfitted")
		}
	})

	t.Run("Clone Drops Inversion State", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := d.Fit(context.Background(), Floats("a", 1, 2, 3)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Clone().Fitted() {
			t.Error("clone should start unfitted")
		}
	})

	t.Run("Null Operand Propagates", func(t *testing.T) {
		d, err := NewDiff(1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, math.NaN(), 3)
		out, err := FitTransform(context.Background(), d, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.IsNull(1) || !out.IsNull(2) {
			t.Error("differences touching a missing value should be missing")
		}
	})
}
