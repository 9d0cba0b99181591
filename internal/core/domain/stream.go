package domain

import "time"

// Platform identifies where a stream originates. Identity only; presentation
// attributes belong to the clients.
type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformYouTube Platform = "youtube"
	PlatformRumble  Platform = "rumble"
	PlatformKick    Platform = "kick"
)

// StreamInfo is the display metadata the external registry holds for a
// stream. The layout service stores identifiers only and looks the rest up
// on demand.
type StreamInfo struct {
	ID           StreamID  `json:"id"`
	Platform     Platform  `json:"platform"`
	Channel      string    `json:"channel"`
	Title        string    `json:"title"`
	Live         bool      `json:"live"`
	RegisteredAt time.Time `json:"registered_at"`
}
