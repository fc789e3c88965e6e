package playback

import "time"

// Scheduler runs fn after d on the same loop that calls the Synchronizer.
// Implementations must not run fn concurrently with other Synchronizer calls.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}
