package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedVersion is returned when a string is not a MAJOR.MINOR.PATCH triple
var ErrMalformedVersion = errors.New("malformed version")

// Zero is the "no version found" sentinel
var Zero = Version{}

// knownSuffixes are stripped before parsing (marker files may carry an extension)
var knownSuffixes = []string{".txt"}

// Version represents a game version as a comparable major.minor.patch triple
type Version struct {
	Major uint `json:"major"`
	Minor uint `json:"minor"`
	Patch uint `json:"patch"`
}

// String returns the version as MAJOR.MINOR.PATCH
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse extracts version components from a string such as "1.19.3" or "1.19.3.txt"
func Parse(s string) (Version, error) {
	cleaned := strings.TrimSpace(s)
	for _, suffix := range knownSuffixes {
		cleaned = strings.TrimSuffix(cleaned, suffix)
	}

	parts := strings.Split(cleaned, ".")
	if len(parts) != 3 {
		return Zero, fmt.Errorf("%w: %q (expected MAJOR.MINOR.PATCH)", ErrMalformedVersion, s)
	}

	var nums [3]uint
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 0)
		if err != nil {
			return Zero, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, s, err)
		}
		nums[i] = uint(n)
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 ordering v against other lexicographically
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpUint(v.Minor, other.Minor)
	default:
		return cmpUint(v.Patch, other.Patch)
	}
}

// Less reports whether v sorts before other
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports component-wise equality
func (v Version) Equal(other Version) bool {
	return v == other
}

// IsZero reports whether v is the 0.0.0 "none" sentinel
func (v Version) IsZero() bool {
	return v == Zero
}

// IncrementPatch bumps the patch component
func (v *Version) IncrementPatch() {
	v.Patch++
}

// IncrementMinor bumps the minor component and resets patch
func (v *Version) IncrementMinor() {
	v.Minor++
	v.Patch = 0
}

// IncrementMajor bumps the major component and resets minor and patch
func (v *Version) IncrementMajor() {
	v.Major++
	v.Minor = 0
	v.Patch = 0
}

func cmpUint(a, b uint) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
