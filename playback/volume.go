package playback

import "github.com/samber/lo"

// VolumeLevel classifies a volume for display.
type VolumeLevel int

const (
	VolumeMuted VolumeLevel = iota
	VolumeHalf
	VolumeFull
)

// LevelOf classifies v, which is clamped to [0, 1].
func LevelOf(v float64) VolumeLevel {
	v = lo.Clamp(v, 0, 1)
	switch {
	case v == 0:
		return VolumeMuted
	case v <= 0.5:
		return VolumeHalf
	default:
		return VolumeFull
	}
}

// NextVolume is the volume button's cycle: half mutes, muted goes to full, full goes to half.
func NextVolume(v float64) float64 {
	switch LevelOf(v) {
	case VolumeHalf:
		return 0
	case VolumeMuted:
		return 1
	default:
		return 0.5
	}
}
