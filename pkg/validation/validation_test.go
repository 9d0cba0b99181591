package validation

import "testing"

func TestValidateStreamID(t *testing.T) {
	valid := []string{"stream-1", "twitch_abc", "A9"}
	for _, id := range valid {
		if err := ValidateStreamID(id); err != nil {
			t.Errorf("expected %q to be valid, got %v", id, err)
		}
	}

	invalid := []string{"", "has space", "semi;colon", string(make([]byte, 101))}
	for _, id := range invalid {
		if err := ValidateStreamID(id); err == nil {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestValidateSnapshotName(t *testing.T) {
	valid := []string{"evening layout", "racing_4x4", "v1.2"}
	for _, name := range valid {
		if err := ValidateSnapshotName(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}

	invalid := []string{"", "slash/name", "tab\tname"}
	for _, name := range invalid {
		if err := ValidateSnapshotName(name); err == nil {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestValidatePlatform(t *testing.T) {
	for _, p := range []string{"twitch", "youtube", "rumble", "kick", "Twitch"} {
		if err := ValidatePlatform(p); err != nil {
			t.Errorf("expected platform %q to be valid, got %v", p, err)
		}
	}

	for _, p := range []string{"", "vimeo"} {
		if err := ValidatePlatform(p); err == nil {
			t.Errorf("expected platform %q to be invalid", p)
		}
	}
}

func TestValidateContainerSize(t *testing.T) {
	if err := ValidateContainerSize(1280, 720); err != nil {
		t.Errorf("expected 1280x720 to be valid, got %v", err)
	}
	if err := ValidateContainerSize(0, 720); err == nil {
		t.Error("expected zero width to be invalid")
	}
	if err := ValidateContainerSize(1280, -1); err == nil {
		t.Error("expected negative height to be invalid")
	}
	if err := ValidateContainerSize(100000, 720); err == nil {
		t.Error("expected oversized width to be invalid")
	}
}
