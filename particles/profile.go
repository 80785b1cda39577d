package particles

import (
	"errors"
	"fmt"
	"strings"
)

// CompactWidth is the viewport width below which the compact profile is used.
const CompactWidth = 768

// ErrInvalidProfile is returned for profiles that cannot drive a field.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile bundles the tunables selected once at mount time.
type Profile struct {
	Name         string
	Count        int
	LinkDistance float64
	CursorRadius float64

	// Radii are drawn uniformly from [RadiusMin, RadiusMax). Equal bounds give a fixed radius.
	RadiusMin float64
	RadiusMax float64
}

// CompactProfile is used on narrow viewports.
func CompactProfile() Profile {
	return Profile{
		Name:         "compact",
		Count:        150,
		LinkDistance: 40,
		CursorRadius: 60,
		RadiusMin:    1,
		RadiusMax:    1,
	}
}

// FullProfile is used on wide viewports.
func FullProfile() Profile {
	return Profile{
		Name:         "full",
		Count:        600,
		LinkDistance: 60,
		CursorRadius: 100,
		RadiusMin:    0,
		RadiusMax:    1,
	}
}

// SelectProfile picks the profile for a viewport width.
func SelectProfile(viewportWidth int) Profile {
	if viewportWidth < CompactWidth {
		return CompactProfile()
	}
	return FullProfile()
}

// ProfileByName resolves "auto", "compact" or "full". Auto selects by viewport width.
func ProfileByName(name string, viewportWidth int) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return SelectProfile(viewportWidth), nil
	case "compact":
		return CompactProfile(), nil
	case "full":
		return FullProfile(), nil
	default:
		return Profile{}, fmt.Errorf("%w: unknown name %q", ErrInvalidProfile, name)
	}
}

// Validate reports whether p can drive a field.
func (p Profile) Validate() error {
	switch {
	case p.Count <= 0:
		return fmt.Errorf("%w: count %d", ErrInvalidProfile, p.Count)
	case p.LinkDistance <= 0:
		return fmt.Errorf("%w: link distance %v", ErrInvalidProfile, p.LinkDistance)
	case p.CursorRadius <= 0:
		return fmt.Errorf("%w: cursor radius %v", ErrInvalidProfile, p.CursorRadius)
	case p.RadiusMin < 0 || p.RadiusMax < p.RadiusMin:
		return fmt.Errorf("%w: radius range [%v, %v)", ErrInvalidProfile, p.RadiusMin, p.RadiusMax)
	}
	return nil
}

func (p Profile) fixedRadius() bool { return p.RadiusMin == p.RadiusMax }
