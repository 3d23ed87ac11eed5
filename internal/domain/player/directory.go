package player

import "context"

// Directory is an external membership list keyed by account username.
type Directory interface {
	// ResolveDisplayName maps a display name to the member's username.
	ResolveDisplayName(ctx context.Context, displayName string) (string, bool, error)
	// DisplayName returns the member's display name when it differs from username.
	DisplayName(ctx context.Context, username string) (string, bool, error)
}

// FormatName renders "username (Display)" when the directory knows a different
// display name and the bare username otherwise.
func FormatName(ctx context.Context, dir Directory, username string) string {
	if dir == nil {
		return username
	}
	display, ok, err := dir.DisplayName(ctx, username)
	if err != nil || !ok || display == "" || display == username {
		return username
	}
	return username + " (" + display + ")"
}
