package interval

import (
	"errors"
	"testing"
	"time"

	"github.com/syncupstack/syncup-engine/internal/models"
)

func iv(t *testing.T, start, end string) models.TimeInterval {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse start %q: %v", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse end %q: %v", end, err)
	}
	return models.TimeInterval{Start: s, End: e}
}

func equalSets(a, b []models.TimeInterval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			return false
		}
	}
	return true
}

func TestNewRejectsInvertedAndZeroLength(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	if _, err := New(at, at); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("zero-length interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := New(at.Add(time.Hour), at); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("inverted interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := New(at, at.Add(time.Hour)); err != nil {
		t.Errorf("valid interval: unexpected error %v", err)
	}
}

func TestValidate(t *testing.T) {
	good := []models.TimeInterval{
		iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
	}
	if err := Validate(good); err != nil {
		t.Errorf("valid set: unexpected error %v", err)
	}

	bad := append(good, iv(t, "2026-01-05T12:00:00Z", "2026-01-05T11:00:00Z"))
	if err := Validate(bad); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("inverted member: got %v, want ErrInvalidInterval", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []models.TimeInterval
		want []models.TimeInterval
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "unsorted input is sorted",
			in: []models.TimeInterval{
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T15:00:00Z"),
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T15:00:00Z"),
			},
		},
		{
			name: "overlapping intervals merge",
			in: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T11:00:00Z"),
				iv(t, "2026-01-05T10:00:00Z", "2026-01-05T12:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T12:00:00Z"),
			},
		},
		{
			name: "adjacent intervals merge",
			in: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
				iv(t, "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T11:00:00Z"),
			},
		},
		{
			name: "contained interval is absorbed",
			in: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z"),
				iv(t, "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !equalSets(got, tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []models.TimeInterval{
		iv(t, "2026-01-05T14:00:00Z", "2026-01-05T15:00:00Z"),
		iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
	}
	first := in[0]
	Normalize(in)
	if !in[0].Start.Equal(first.Start) || !in[0].End.Equal(first.End) {
		t.Error("Normalize mutated its input slice")
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b []models.TimeInterval
		want []models.TimeInterval
	}{
		{
			name: "partial overlap",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T14:00:00Z", "2026-01-05T22:00:00Z")},
			want: []models.TimeInterval{iv(t, "2026-01-05T14:00:00Z", "2026-01-05T17:00:00Z")},
		},
		{
			name: "touching endpoints produce nothing",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T12:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T12:00:00Z", "2026-01-05T14:00:00Z")},
			want: nil,
		},
		{
			name: "one interval spanning several",
			a:    []models.TimeInterval{iv(t, "2026-01-05T00:00:00Z", "2026-01-06T00:00:00Z")},
			b: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T15:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T15:00:00Z"),
			},
		},
		{
			name: "disjoint sets",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T20:00:00Z", "2026-01-05T21:00:00Z")},
			want: nil,
		},
		{
			name: "empty operand",
			a:    nil,
			b:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z")},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intersect(tt.a, tt.b)
			if !equalSets(got, tt.want) {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
			// Intersection is commutative.
			swapped := Intersect(tt.b, tt.a)
			if !equalSets(swapped, tt.want) {
				t.Errorf("Intersect(b, a) = %v, want %v", swapped, tt.want)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name string
		a, b []models.TimeInterval
		want []models.TimeInterval
	}{
		{
			name: "hole in the middle splits the interval",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T12:00:00Z", "2026-01-05T13:00:00Z")},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T12:00:00Z"),
				iv(t, "2026-01-05T13:00:00Z", "2026-01-05T17:00:00Z"),
			},
		},
		{
			name: "trim from the front",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T08:00:00Z", "2026-01-05T10:00:00Z")},
			want: []models.TimeInterval{iv(t, "2026-01-05T10:00:00Z", "2026-01-05T17:00:00Z")},
		},
		{
			name: "full coverage removes everything",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
			b:    []models.TimeInterval{iv(t, "2026-01-05T00:00:00Z", "2026-01-06T00:00:00Z")},
			want: nil,
		},
		{
			name: "subtracting nothing is identity",
			a:    []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
			b:    nil,
			want: []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T17:00:00Z")},
		},
		{
			name: "several holes over several intervals",
			a: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T12:00:00Z"),
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T17:00:00Z"),
			},
			b: []models.TimeInterval{
				iv(t, "2026-01-05T10:00:00Z", "2026-01-05T10:30:00Z"),
				iv(t, "2026-01-05T16:00:00Z", "2026-01-05T18:00:00Z"),
			},
			want: []models.TimeInterval{
				iv(t, "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
				iv(t, "2026-01-05T10:30:00Z", "2026-01-05T12:00:00Z"),
				iv(t, "2026-01-05T14:00:00Z", "2026-01-05T16:00:00Z"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.a, tt.b)
			if !equalSets(got, tt.want) {
				t.Errorf("Subtract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	set := []models.TimeInterval{
		iv(t, "2026-01-05T10:00:00Z", "2026-01-05T10:30:00Z"),
		iv(t, "2026-01-05T11:00:00Z", "2026-01-05T11:30:00Z"),
	}

	// A 15-minute pad leaves a gap between the two blocks.
	got := Pad(set, 15*time.Minute)
	want := []models.TimeInterval{
		iv(t, "2026-01-05T09:45:00Z", "2026-01-05T10:45:00Z"),
		iv(t, "2026-01-05T10:45:00Z", "2026-01-05T11:45:00Z"),
	}
	// Adjacent after padding, so they merge.
	want = Normalize(want)
	if !equalSets(got, want) {
		t.Errorf("Pad(15m) = %v, want %v", got, want)
	}

	// Zero buffer only normalizes.
	got = Pad(set, 0)
	if !equalSets(got, Normalize(set)) {
		t.Errorf("Pad(0) = %v, want normalized input", got)
	}
}

func TestFilterMinDuration(t *testing.T) {
	set := []models.TimeInterval{
		iv(t, "2026-01-05T09:00:00Z", "2026-01-05T09:20:00Z"),
		iv(t, "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z"),
		iv(t, "2026-01-05T12:00:00Z", "2026-01-05T12:30:00Z"),
	}

	got := FilterMinDuration(set, 30*time.Minute)
	want := []models.TimeInterval{
		iv(t, "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z"),
		iv(t, "2026-01-05T12:00:00Z", "2026-01-05T12:30:00Z"),
	}
	if !equalSets(got, want) {
		t.Errorf("FilterMinDuration(30m) = %v, want %v", got, want)
	}

	if got := FilterMinDuration(set, 2*time.Hour); got != nil {
		t.Errorf("FilterMinDuration(2h) = %v, want empty", got)
	}
}

// Intersecting a union with one of its operands must give that operand
// back when the operand is canonical.
func TestIntersectUnionContainment(t *testing.T) {
	a := Normalize([]models.TimeInterval{
		iv(t, "2026-01-05T09:00:00Z", "2026-01-05T11:00:00Z"),
		iv(t, "2026-01-05T14:00:00Z", "2026-01-05T16:00:00Z"),
	})
	b := Normalize([]models.TimeInterval{
		iv(t, "2026-01-05T10:00:00Z", "2026-01-05T12:00:00Z"),
		iv(t, "2026-01-05T20:00:00Z", "2026-01-05T21:00:00Z"),
	})

	got := Intersect(Union(a, b), a)
	if !equalSets(got, a) {
		t.Errorf("Intersect(Union(a,b), a) = %v, want %v", got, a)
	}
}

func TestUnion(t *testing.T) {
	a := []models.TimeInterval{iv(t, "2026-01-05T09:00:00Z", "2026-01-05T11:00:00Z")}
	b := []models.TimeInterval{
		iv(t, "2026-01-05T10:00:00Z", "2026-01-05T12:00:00Z"),
		iv(t, "2026-01-05T15:00:00Z", "2026-01-05T16:00:00Z"),
	}

	got := Union(a, b)
	want := []models.TimeInterval{
		iv(t, "2026-01-05T09:00:00Z", "2026-01-05T12:00:00Z"),
		iv(t, "2026-01-05T15:00:00Z", "2026-01-05T16:00:00Z"),
	}
	if !equalSets(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}
}
