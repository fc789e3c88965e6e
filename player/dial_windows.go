//go:build windows

package player

import (
	"fmt"
	"net"
	"time"

	"github.com/scrubline/scrubline/constant"
	"gopkg.in/natefinch/npipe.v2"
)

func socketPath(id string) string {
	return fmt.Sprintf(`\\.\pipe\%s-mpv-%s`, constant.App, id)
}

func dial(path string, timeout time.Duration) (net.Conn, error) {
	return npipe.DialTimeout(path, timeout)
}

// Named pipes vanish with the process.
func removeSocket(string) {}
