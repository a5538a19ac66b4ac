// Package player defines the authenticated player's profile and the
// collaborators that read and write it.
package player

import (
	"context"
	"errors"
)

// DefaultAvatar is shown for players who never picked one.
const DefaultAvatar = "👤"

// ErrNotFound is returned when no profile exists for a player ID.
var ErrNotFound = errors.New("player: profile not found")

// Profile is what the game knows about a player.
type Profile struct {
	ID          string
	DisplayName string
	Avatar      string
	HighScore   int
}

// Complete reports whether the profile is usable for score submission.
func (p Profile) Complete() bool {
	return p.ID != "" && p.DisplayName != ""
}

// AvatarOrDefault returns the avatar, falling back to DefaultAvatar.
func (p Profile) AvatarOrDefault() string {
	if p.Avatar == "" {
		return DefaultAvatar
	}
	return p.Avatar
}

// Reader loads a profile by player ID.
type Reader interface {
	Profile(ctx context.Context, playerID string) (Profile, error)
}

// Writer creates or updates a profile.
// Implementations also refresh the display name and avatar on the player's
// leaderboard entry.
type Writer interface {
	SaveProfile(ctx context.Context, p Profile) error
}

// KeyBinder ties a profile to the SSH public key that first claimed it.
type KeyBinder interface {
	// BindKey binds fingerprint to the profile if it has no key yet and
	// reports whether fingerprint is the bound key.
	BindKey(ctx context.Context, playerID, fingerprint string) (bool, error)
}

// Ensure returns the stored profile for id, creating one named displayName
// if none exists yet.
func Ensure(ctx context.Context, r Reader, w Writer, id, displayName string) (Profile, error) {
	p, err := r.Profile(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	p = Profile{ID: id, DisplayName: displayName, Avatar: DefaultAvatar}
	if err := w.SaveProfile(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
