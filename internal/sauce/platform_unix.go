//go:build unix

package sauce

import (
	"strings"

	"golang.org/x/sys/unix"
)

func osRelease() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return strings.TrimRight(string(u.Release[:]), "\x00")
}
