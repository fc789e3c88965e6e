//go:build !windows

package player

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/scrubline/scrubline/where"
)

func socketPath(id string) string {
	return filepath.Join(where.Sockets(), fmt.Sprintf("mpv-%s.sock", id))
}

func dial(path string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", path, timeout)
}

func removeSocket(path string) {
	_ = os.Remove(path)
}
