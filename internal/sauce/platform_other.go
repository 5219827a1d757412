//go:build !unix && !windows

package sauce

func osRelease() string {
	return ""
}
