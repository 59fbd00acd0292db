package geom

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want Scale
	}{
		{0.0, 0.1},
		{0.05, 0.1},
		{1.0, 1.0},
		{2.5, 2.5},
		{20.0, 10.0},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToHostToGuestRoundTrip(t *testing.T) {
	s := Scale(2.0)
	if got := s.ToGuest(s.ToHost(200)); got != 200 {
		t.Errorf("round trip = %d, want 200", got)
	}
}

func TestCeilScale(t *testing.T) {
	if got := Scale(1.2).CeilScale(); got != 2 {
		t.Errorf("CeilScale(1.2) = %v, want 2", got)
	}
	if got := Scale(2.0).CeilScale(); got != 2 {
		t.Errorf("CeilScale(2.0) = %v, want 2", got)
	}
}

func TestClampRectShrinksOversizedRect(t *testing.T) {
	r := ClampRect(Rect{X: 0, Y: 0, W: 200, H: 200}, 100, 150)
	if r.W != 100 || r.H != 150 {
		t.Errorf("ClampRect size = %dx%d, want 100x150", r.W, r.H)
	}
}

func TestClampRectPullsInBoundsWhenOffscreen(t *testing.T) {
	r := ClampRect(Rect{X: 90, Y: 140, W: 50, H: 50}, 100, 150)
	if r.X+r.W > 100 || r.Y+r.H > 150 {
		t.Errorf("ClampRect did not pull rect back in bounds: %+v", r)
	}
	if r.X < 0 || r.Y < 0 {
		t.Errorf("ClampRect produced negative origin: %+v", r)
	}
}

func TestCenter(t *testing.T) {
	x, y := Center(50, 50, 200, 100)
	if x != 75 || y != 25 {
		t.Errorf("Center = (%d, %d), want (75, 25)", x, y)
	}
}

func TestViewportDestinationCeilsDivision(t *testing.T) {
	s := Scale(3.0)
	w, h := s.ViewportDestination(10, 10)
	if w != 4 || h != 4 {
		t.Errorf("ViewportDestination(10,10) at scale 3 = (%d,%d), want (4,4)", w, h)
	}
}

func TestDamageOutsetGrowsRect(t *testing.T) {
	s := Scale(1.0)
	r := s.DamageOutset(Rect{X: 10, Y: 10, W: 10, H: 10})
	if r.X > 9 || r.Y > 9 || r.W < 12 || r.H < 12 {
		t.Errorf("DamageOutset did not outset: %+v", r)
	}
}
