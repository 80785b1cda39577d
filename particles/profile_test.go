package particles

import (
	"errors"
	"testing"
)

func TestSelectProfile(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{320, "compact"},
		{767, "compact"},
		{768, "full"},
		{1920, "full"},
	}
	for _, tt := range tests {
		if got := SelectProfile(tt.width).Name; got != tt.want {
			t.Fatalf("SelectProfile(%d) = %q, want %q", tt.width, got, tt.want)
		}
	}
}

func TestProfileParameters(t *testing.T) {
	c := CompactProfile()
	if c.Count != 150 || c.LinkDistance != 40 || c.CursorRadius != 60 || c.RadiusMin != 1 || c.RadiusMax != 1 {
		t.Fatalf("compact profile = %+v", c)
	}
	f := FullProfile()
	if f.Count != 600 || f.LinkDistance != 60 || f.CursorRadius != 100 || f.RadiusMin != 0 || f.RadiusMax != 1 {
		t.Fatalf("full profile = %+v", f)
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("auto", 500)
	if err != nil || p.Name != "compact" {
		t.Fatalf("ProfileByName(auto, 500) = %q, %v", p.Name, err)
	}
	p, err = ProfileByName("FULL", 500)
	if err != nil || p.Name != "full" {
		t.Fatalf("ProfileByName(FULL, 500) = %q, %v", p.Name, err)
	}
	if _, err := ProfileByName("huge", 500); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("ProfileByName(huge) err = %v, want ErrInvalidProfile", err)
	}
}

func TestProfileValidate(t *testing.T) {
	bad := []Profile{
		{Count: 0, LinkDistance: 1, CursorRadius: 1},
		{Count: 1, LinkDistance: 0, CursorRadius: 1},
		{Count: 1, LinkDistance: 1, CursorRadius: 0},
		{Count: 1, LinkDistance: 1, CursorRadius: 1, RadiusMin: 2, RadiusMax: 1},
		{Count: 1, LinkDistance: 1, CursorRadius: 1, RadiusMin: -1, RadiusMax: 1},
	}
	for i, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("case %d: Validate() = %v, want ErrInvalidProfile", i, err)
		}
	}
	if err := FullProfile().Validate(); err != nil {
		t.Fatalf("FullProfile().Validate() = %v", err)
	}
}
