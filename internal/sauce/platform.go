package sauce

import (
	"fmt"
	"runtime"
)

// PlatformName describes the host operating system the way Sauce Labs expects it
func PlatformName() string {
	return platformName(runtime.GOOS, osRelease())
}

func platformName(goos, release string) string {
	switch goos {
	case "darwin":
		return fmt.Sprintf("Mac %s", release)
	case "windows":
		return fmt.Sprintf("windows %s", release)
	case "linux":
		return "linux"
	default:
		return "unknown"
	}
}
