package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// AABB Tests
// =============================================================================

func TestAABBOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		aabb1 AABB
		aabb2 AABB
		want  bool
	}{
		{
			name:  "Separated on X axis",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			aabb2: AABB{Min: mgl64.Vec3{2, 0, 0}, Max: mgl64.Vec3{3, 1, 1}},
			want:  false,
		},
		{
			name:  "Separated on Y axis",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			aabb2: AABB{Min: mgl64.Vec3{0, -2, 0}, Max: mgl64.Vec3{1, -1, 1}},
			want:  false,
		},
		{
			name:  "Separated on Z axis",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			aabb2: AABB{Min: mgl64.Vec3{0, 0, 2}, Max: mgl64.Vec3{1, 1, 3}},
			want:  false,
		},
		{
			name:  "Identical boxes",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			aabb2: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			want:  true,
		},
		{
			name:  "Partial overlap on all axes",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{2, 2, 2}},
			aabb2: AABB{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{3, 3, 3}},
			want:  true,
		},
		{
			name:  "Touching faces",
			aabb1: AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
			aabb2: AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.aabb1.Overlaps(tt.aabb2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Test symmetry
			if got := tt.aabb2.Overlaps(tt.aabb1); got != tt.want {
				t.Errorf("Overlaps() symmetric = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		point mgl64.Vec3
		want  bool
	}{
		{name: "Center", point: mgl64.Vec3{0, 0, 0}, want: true},
		{name: "Corner", point: mgl64.Vec3{1, 1, 1}, want: true},
		{name: "Outside X", point: mgl64.Vec3{1.5, 0, 0}, want: false},
		{name: "Outside Y", point: mgl64.Vec3{0, -1.5, 0}, want: false},
		{name: "Outside Z", point: mgl64.Vec3{0, 0, 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestFromPoints(t *testing.T) {
	box := FromPoints(
		mgl64.Vec3{1, -2, 3},
		mgl64.Vec3{-1, 2, 0},
		mgl64.Vec3{0, 0, 5},
	)

	want := AABB{Min: mgl64.Vec3{-1, -2, 0}, Max: mgl64.Vec3{1, 2, 5}}
	if box != want {
		t.Errorf("FromPoints() = %v, want %v", box, want)
	}
}

func TestAABBInflate(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	grown := box.Inflate(0.5)

	want := AABB{Min: mgl64.Vec3{-0.5, -0.5, -0.5}, Max: mgl64.Vec3{1.5, 1.5, 1.5}}
	if grown != want {
		t.Errorf("Inflate(0.5) = %v, want %v", grown, want)
	}
}
