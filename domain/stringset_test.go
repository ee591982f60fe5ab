//go:build !integration

package domain

import "testing"

func TestNewStringSet(t *testing.T) {
	s := NewStringSet(" wireless", "wireless ", "", "  ", "bluetooth")
	if s.Len() != 2 || !s.Has("wireless") || !s.Has("bluetooth") {
		t.Fatalf("set = %v", s)
	}
}

func TestStringSet_IntersectionSize(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{[]string{"a", "b"}, []string{"b", "c", "d"}, 1},
		{[]string{"a"}, nil, 0},
		{nil, nil, 0},
		{[]string{"a", "b", "c"}, []string{"c", "b", "a"}, 3},
	}

	for _, tt := range tests {
		a, b := NewStringSet(tt.a...), NewStringSet(tt.b...)
		if got := a.IntersectionSize(b); got != tt.want {
			t.Fatalf("%v ∩ %v = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := b.IntersectionSize(a); got != tt.want {
			t.Fatalf("intersection not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}
