package density

import (
	"strings"

	"fellingdate/domain/core"
)

// Family is the closed set of supported sapwood density families. Adding a
// family means extending the enum and every exhaustive switch over it.
type Family int

const (
	Lognormal Family = iota
	Normal
	Weibull
	Gamma
)

// String returns the canonical lower-case family name.
func (f Family) String() string {
	switch f {
	case Lognormal:
		return "lognormal"
	case Normal:
		return "normal"
	case Weibull:
		return "weibull"
	case Gamma:
		return "gamma"
	}
	return "unknown"
}

// Families lists all supported families.
func Families() []Family {
	return []Family{Lognormal, Normal, Weibull, Gamma}
}

// ParseFamily maps a user-supplied family name onto the enum,
// case-insensitively. Unknown names are a fatal input error.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lognormal", "log-normal":
		return Lognormal, nil
	case "normal", "gaussian":
		return Normal, nil
	case "weibull":
		return Weibull, nil
	case "gamma":
		return Gamma, nil
	}
	return 0, core.NewUnsupportedFamilyError(name)
}
