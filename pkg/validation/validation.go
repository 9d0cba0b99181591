package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// StreamIDRegex validates stream ID format
	StreamIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// SnapshotNameRegex validates snapshot name format
	SnapshotNameRegex = regexp.MustCompile(`^[a-zA-Z0-9 ._-]+$`)

	// ChannelRegex validates platform channel names
	ChannelRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

var knownPlatforms = map[string]bool{
	"twitch":  true,
	"youtube": true,
	"rumble":  true,
	"kick":    true,
}

// ValidateStreamID validates stream ID
func ValidateStreamID(streamID string) error {
	if streamID == "" {
		return fmt.Errorf("stream ID is required")
	}
	if len(streamID) > 100 {
		return fmt.Errorf("stream ID is too long (max 100 characters)")
	}
	if !StreamIDRegex.MatchString(streamID) {
		return fmt.Errorf("invalid stream ID format")
	}
	return nil
}

// ValidateSessionID validates session ID
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if len(sessionID) > 100 {
		return fmt.Errorf("session ID is too long (max 100 characters)")
	}
	return nil
}

// ValidateSnapshotName validates snapshot name
func ValidateSnapshotName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("snapshot name is too long (max 100 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("snapshot name contains invalid characters")
	}
	if !SnapshotNameRegex.MatchString(name) {
		return fmt.Errorf("invalid snapshot name format")
	}
	return nil
}

// ValidatePlatform validates a streaming platform identifier
func ValidatePlatform(platform string) error {
	if platform == "" {
		return fmt.Errorf("platform is required")
	}
	if !knownPlatforms[strings.ToLower(platform)] {
		return fmt.Errorf("unknown platform: %s", platform)
	}
	return nil
}

// ValidateChannel validates a platform channel name
func ValidateChannel(channel string) error {
	if channel == "" {
		return fmt.Errorf("channel is required")
	}
	if len(channel) > 100 {
		return fmt.Errorf("channel is too long (max 100 characters)")
	}
	if !ChannelRegex.MatchString(channel) {
		return fmt.Errorf("invalid channel format")
	}
	return nil
}

// ValidateContainerSize validates viewport dimensions
func ValidateContainerSize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("container size must be positive")
	}
	if width > 16384 || height > 16384 {
		return fmt.Errorf("container size is too large")
	}
	return nil
}

// ValidateViewerID validates viewer ID used in auth tokens
func ValidateViewerID(viewerID string) error {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return fmt.Errorf("viewer ID is required")
	}
	if len(viewerID) < 3 {
		return fmt.Errorf("viewer ID must be at least 3 characters")
	}
	if len(viewerID) > 50 {
		return fmt.Errorf("viewer ID is too long (max 50 characters)")
	}
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(viewerID) {
		return fmt.Errorf("viewer ID contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}
