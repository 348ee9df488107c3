package device

import "strings"

type Platform int

const (
	IOS Platform = iota + 1
	Android
	JS
)

// Order matters: specs are emitted in this order.
var platforms = []Platform{IOS, Android, JS}

func (p Platform) String() string {
	switch p {
	case IOS:
		return "IOS"
	case Android:
		return "ANDROID"
	case JS:
		return "JS"
	default:
		return "UNKNOWN"
	}
}

func (p Platform) make() string {
	if p == Android {
		return "GOOGLE"
	}
	return "APPLE"
}

// os is the operating system the lab knows the platform by.
func (p Platform) os() string {
	switch p {
	case Android:
		return "ANDROID"
	case JS:
		return "OSX"
	default:
		return "IOS"
	}
}

// ParsePlatforms matches tokens case-insensitively by substring, so
// "iosx" still selects IOS. Each platform appears at most once.
func ParsePlatforms(tokens ...string) []Platform {
	joined := strings.ToUpper(strings.Join(tokens, ","))

	var found []Platform
	for _, p := range platforms {
		if strings.Contains(joined, p.String()) {
			found = append(found, p)
		}
	}
	return found
}
