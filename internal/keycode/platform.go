package keycode

import (
	"fmt"
	"strings"
)

// Platform identifies the host OS whose key-label vocabulary is in use.
type Platform int

const (
	Generic Platform = iota
	Windows
	Mac
	Linux
)

// Platforms lists every platform in declaration order.
var Platforms = []Platform{Generic, Windows, Mac, Linux}

// String returns the lower-case platform name.
func (p Platform) String() string {
	switch p {
	case Generic:
		return "generic"
	case Windows:
		return "windows"
	case Mac:
		return "mac"
	case Linux:
		return "linux"
	default:
		return fmt.Sprintf("platform(%d)", int(p))
	}
}

// ParsePlatform parses a platform name. Matching is case-insensitive and
// accepts a few common aliases.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "generic", "default":
		return Generic, nil
	case "windows", "win":
		return Windows, nil
	case "mac", "macos", "darwin", "osx":
		return Mac, nil
	case "linux":
		return Linux, nil
	default:
		return Generic, fmt.Errorf("unknown platform %q: must be one of generic, windows, mac, linux", name)
	}
}

// PlatformFromUserAgent picks a platform from a browser user-agent string
// using the editor's precedence: Windows, then Mac, then Linux.
func PlatformFromUserAgent(ua string) Platform {
	switch {
	case strings.Contains(ua, "Win"):
		return Windows
	case strings.Contains(ua, "Mac"):
		return Mac
	case strings.Contains(ua, "Linux"):
		return Linux
	default:
		return Generic
	}
}
