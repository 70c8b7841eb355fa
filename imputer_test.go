package tablz

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestImputer(t *testing.T) {
	t.Run("Mean Strategy", func(t *testing.T) {
		im, err := NewImputer(ImputeMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !im.RequiresFit() || im.Fitted() {
			t.Error("mean imputer should require fit and start unfitted")
		}

		s := Floats("a", 1, math.NaN(), 5)
		out, err := FitTransform(context.Background(), im, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(1) != 3 {
			t.Errorf("expected mean 3, got %v", out.Float(1))
		}
		if out.NullCount() != 0 {
			t.Error("imputed column should be null free")
		}
	})

	t.Run("Median Strategy", func(t *testing.T) {
		im, err := NewImputer(ImputeMedian)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Floats("a", 1, 2, math.NaN(), 100)
		out, err := FitTransform(context.Background(), im, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(2) != 2 {
			t.Errorf("expected median 2, got %v", out.Float(2))
		}
	})

	t.Run("Min Max Strategies", func(t *testing.T) {
		for _, tt := range []struct {
			strategy ImputeStrategy
			want     float64
		}{
			{ImputeMin, 1},
			{ImputeMax, 5},
		} {
			im, err := NewImputer(tt.strategy)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out, err := FitTransform(context.Background(), im, Floats("a", 1, math.NaN(), 5))
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.strategy, err)
			}
			if out.Float(1) != tt.want {
				t.Errorf("%s: expected %v, got %v", tt.strategy, tt.want, out.Float(1))
			}
		}
	})

	t.Run("Zero And One Constants", func(t *testing.T) {
		im, err := NewImputer(ImputeZero)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := FitTransform(context.Background(), im, Floats("a", math.NaN(), 2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != 0 {
			t.Errorf("expected 0, got %v", out.Float(0))
		}

		one, err := NewImputer(ImputeOne)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err = FitTransform(context.Background(), one, Floats("a", math.NaN()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != 1 {
			t.Errorf("expected 1, got %v", out.Float(0))
		}
	})

	t.Run("Zero On String Column", func(t *testing.T) {
		im, err := NewImputer(ImputeZero)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := FitTransform(context.Background(), im, Strings("c", "x", "y").WithNulls(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Str(1) != "0" {
			t.Errorf("expected %q, got %q", "0", out.Str(1))
		}
	})

	t.Run("Forward And Backward", func(t *testing.T) {
		fw, err := NewImputer(ImputeForward)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := fw.Transform(context.Background(), Floats("a", 1, math.NaN(), math.NaN()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(2) != 1 {
			t.Errorf("expected 1, got %v", out.Float(2))
		}

		bw, err := NewImputer(ImputeBackward)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err = bw.Transform(context.Background(), Floats("a", math.NaN(), 3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != 3 {
			t.Errorf("expected 3, got %v", out.Float(0))
		}
	})

	t.Run("Fixed Value", func(t *testing.T) {
		im, err := NewValueImputer(42.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if im.RequiresFit() {
			t.Error("value imputer should not require fit")
		}
		out, err := im.Transform(context.Background(), Floats("a", math.NaN(), 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(0) != 42 {
			t.Errorf("expected 42, got %v", out.Float(0))
		}
	})

	t.Run("Unknown Strategy Rejected", func(t *testing.T) {
		if _, err := NewImputer(ImputeStrategy(99)); !errors.Is(err, ErrConflictingConfig) {
			t.Errorf("expected ErrConflictingConfig, got %v", err)
		}
	})

	t.Run("Transform Before Fit", func(t *testing.T) {
		im, err := NewImputer(ImputeMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := im.Transform(context.Background(), Floats("a", 1)); !errors.Is(err, ErrNotFitted) {
			t.Errorf("expected ErrNotFitted, got %v", err)
		}
	})

	t.Run("Fit On All Null Column", func(t *testing.T) {
		im, err := NewImputer(ImputeMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err = im.Fit(context.Background(), Floats("a", math.NaN()))
		if !errors.Is(err, ErrAllNull) {
			t.Errorf("expected ErrAllNull, got %v", err)
		}
	})

	t.Run("Int Column Stays Int", func(t *testing.T) {
		im, err := NewImputer(ImputeMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := Ints("n", 1, 0, 4).WithNulls(1)
		out, err := FitTransform(context.Background(), im, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.DType() != Int64 {
			t.Errorf("expected Int64, got %s", out.DType())
		}
		// Mean of 1 and 4 rounds to 3.
		if out.Int(1) != 3 {
			t.Errorf("expected 3, got %d", out.Int(1))
		}
	})

	t.Run("Clone Is Unfitted", func(t *testing.T) {
		im, err := NewImputer(ImputeMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := im.Fit(context.Background(), Floats("a", 1, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if im.Clone().Fitted() {
			t.Error("clone should start unfitted")
		}
		if !im.Fitted() {
			t.Error("cloning should not reset the source")
		}
	})
}

func TestRollingImputer(t *testing.T) {
	t.Run("Fills From Rolling Stat", func(t *testing.T) {
		r := NewRollingImputer(3, RollingMean)
		if r.RequiresFit() || !r.Fitted() {
			t.Error("rolling imputer should be fit free")
		}
		s := Floats("a", 1, 2, math.NaN(), 4, 5)
		out, err := r.Transform(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.NullCount() != 0 {
			t.Errorf("expected null free output, got %d nulls", out.NullCount())
		}
		// Trailing window at the gap holds 1 and 2.
		if out.Float(2) != 1.5 {
			t.Errorf("expected 1.5, got %v", out.Float(2))
		}
		// Observed values pass through untouched.
		if out.Float(0) != 1 || out.Float(3) != 4 {
			t.Errorf("observed values changed: %v", out.Float64s())
		}
	})

	t.Run("Leading Gap Falls Through To Zero", func(t *testing.T) {
		r := NewRollingImputer(2, RollingMean).WithMinSamples(2)
		s := Floats("a", math.NaN(), math.NaN(), 3, 4)
		out, err := r.Transform(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.NullCount() != 0 {
			t.Error("fallback chain should leave no nulls")
		}
		if out.Float(0) != 0 {
			t.Errorf("leading gap should end at 0, got %v", out.Float(0))
		}
	})

	t.Run("Median Strategy", func(t *testing.T) {
		r := NewRollingImputer(3, RollingMedian)
		s := Floats("a", 1, 100, 2, math.NaN())
		out, err := r.Transform(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Window at the gap holds 100 and 2.
		if out.Float(3) != 51 {
			t.Errorf("expected 51, got %v", out.Float(3))
		}
	})

	t.Run("Window Clamped To One", func(t *testing.T) {
		r := NewRollingImputer(0, RollingMean)
		if _, err := r.Transform(context.Background(), Floats("a", 1, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Int Column Stays Int", func(t *testing.T) {
		r := NewRollingImputer(2, RollingMean)
		s := Ints("n", 2, 0, 6).WithNulls(1)
		out, err := r.Transform(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.DType() != Int64 {
			t.Errorf("expected Int64, got %s", out.DType())
		}
	})
}
