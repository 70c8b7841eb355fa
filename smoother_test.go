package tablz

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestSmoother(t *testing.T) {
	t.Run("Clamps Outliers", func(t *testing.T) {
		sm := NewSmoother()
		s := Floats("a", 1, 2, 3, 4, 5, 100)
		out, err := FitTransform(context.Background(), sm, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Median 3.5, MAD 1.5: the spike clamps to 3.5 + 3*1.5.
		if got := out.Float(5); !approxEqual(got, 8) {
			t.Errorf("expected clamp to 8, got %v", got)
		}
		for i := 0; i < 5; i++ {
			if out.Float(i) != s.Float(i) {
				t.Errorf("inlier at %d changed: %v -> %v", i, s.Float(i), out.Float(i))
			}
		}
	})

	t.Run("Zero MAD Uses Fill Value", func(t *testing.T) {
		sm := NewSmoother()
		s := Floats("a", 5, 5, 5, 5, 100)
		out, err := FitTransform(context.Background(), sm, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// MAD 0 is replaced by 1e-4, so the clamp lands at 5 + 3e-4.
		if got := out.Float(4); math.Abs(got-5.0003) > 1e-9 {
			t.Errorf("expected 5.0003, got %v", got)
		}
	})

	t.Run("Preserves Nulls", func(t *testing.T) {
		sm := NewSmoother()
		out, err := FitTransform(context.Background(), sm, Floats("a", 1, math.NaN(), 3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.IsNull(1) {
			t.Error("missing entries should stay missing")
		}
	})

	t.Run("Custom Threshold", func(t *testing.T) {
		sm := NewSmoother().WithMaxZScore(100)
		s := Floats("a", 1, 2, 3, 4, 5, 100)
		out, err := FitTransform(context.Background(), sm, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Float(5) != 100 {
			t.Errorf("loose threshold should pass the spike through, got %v", out.Float(5))
		}
	})

	t.Run("Transform Before Fit", func(t *testing.T) {
		sm := NewSmoother()
		if _, err := sm.Transform(context.Background(), Floats("a", 1)); !errors.Is(err, ErrNotFitted) {
			t.Errorf("expected ErrNotFitted, got %v", err)
		}
	})

	t.Run("Fit On All Null Column", func(t *testing.T) {
		sm := NewSmoother()
		if err := sm.Fit(context.Background(), Floats("a", math.NaN())); !errors.Is(err, ErrAllNull) {
			t.Errorf("expected ErrAllNull, got %v", err)
		}
	})

	t.Run("Clone Keeps Config Drops State", func(t *testing.T) {
		sm := NewSmoother().WithMaxZScore(2)
		if err := sm.Fit(context.Background(), Floats("a", 1, 2, 3)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c := sm.Clone()
		if c.Fitted() {
			t.Error("clone should start unfitted")
		}
		if c.(*Smoother).maxZScore != 2 {
			t.Error("clone should keep configuration")
		}
	})
}

func TestRollingZScore(t *testing.T) {
	t.Run("Names And Shape", func(t *testing.T) {
		s := Floats("a", 1, 2, 3, 4)
		z, med, mad, err := RollingZScore(s, 2, 1, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if z.Name() != "z_score" || med.Name() != "rolling_median" || mad.Name() != "rolling_mad" {
			t.Errorf("unexpected names: %s/%s/%s", z.Name(), med.Name(), mad.Name())
		}
		if z.Len() != 4 || med.Len() != 4 || mad.Len() != 4 {
			t.Error("outputs should match input length")
		}
	})

	t.Run("Value On Its Own Median Scores Zero", func(t *testing.T) {
		s := Floats("a", 1, 2, 3, 4)
		z, _, _, err := RollingZScore(s, 2, 1, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The first window holds only the value itself.
		if !approxEqual(z.Float(0), 0) {
			t.Errorf("expected 0, got %v", z.Float(0))
		}
	})

	t.Run("Min Samples Gate Propagates", func(t *testing.T) {
		s := Floats("a", 1, 2, 3)
		z, med, mad, err := RollingZScore(s, 2, 2, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !z.IsNull(0) || !med.IsNull(0) || !mad.IsNull(0) {
			t.Error("first row lacks window samples and should be missing everywhere")
		}
	})

	t.Run("String Column Rejected", func(t *testing.T) {
		if _, _, _, err := RollingZScore(Strings("c", "x"), 2, 1, false); err == nil {
			t.Fatal("expected error for string input")
		}
	})
}

func TestRollingSmoother(t *testing.T) {
	t.Run("Clamps Local Spike", func(t *testing.T) {
		r := NewRollingSmoother(5)
		s := Floats("a", 10, 10, 10, 10, 100, 10, 10)
		out, err := r.Transform(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Zero rolling MAD falls back to the fill value, pulling the
		// spike to 10 + 3e-4.
		if got := out.Float(4); math.Abs(got-10) > 0.001 {
			t.Errorf("spike not clamped: %v", got)
		}
		for _, i := range []int{0, 1, 2, 3, 5, 6} {
			if out.Float(i) != 10 {
				t.Errorf("inlier at %d changed: %v", i, out.Float(i))
			}
		}
	})

	t.Run("Fit Free Contract", func(t *testing.T) {
		r := NewRollingSmoother(3)
		if r.RequiresFit() || !r.Fitted() {
			t.Error("rolling smoother should be fit free")
		}
		if err := r.Fit(context.Background(), Series{}); err != nil {
			t.Errorf("fit should be a no-op, got %v", err)
		}
	})

	t.Run("String Column Rejected", func(t *testing.T) {
		r := NewRollingSmoother(3)
		if _, err := r.Transform(context.Background(), Strings("c", "x")); !errors.Is(err, ErrNonNumeric) {
			t.Errorf("expected ErrNonNumeric, got %v", err)
		}
	})

	t.Run("Window Clamped To One", func(t *testing.T) {
		r := NewRollingSmoother(0)
		if _, err := r.Transform(context.Background(), Floats("a", 1, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
