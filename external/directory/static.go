package directory

import (
	"context"
	"strings"
)

// Static is a fixed membership table, usually loaded from the YAML config file.
type Static struct {
	byUsername map[string]Member
	byDisplay  map[string]Member
}

// NewStatic builds a directory from username to display name pairs. Lookups are
// case-insensitive.
func NewStatic(members map[string]string) *Static {
	s := &Static{
		byUsername: make(map[string]Member, len(members)),
		byDisplay:  make(map[string]Member, len(members)),
	}
	for username, display := range members {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		m := Member{Username: username, DisplayName: strings.TrimSpace(display)}
		s.byUsername[strings.ToLower(username)] = m
		if m.DisplayName != "" {
			s.byDisplay[strings.ToLower(m.DisplayName)] = m
		}
	}
	return s
}

func (s *Static) ResolveDisplayName(_ context.Context, displayName string) (string, bool, error) {
	m, ok := s.byDisplay[strings.ToLower(strings.TrimSpace(displayName))]
	if !ok {
		return "", false, nil
	}
	return m.Username, true, nil
}

func (s *Static) DisplayName(_ context.Context, username string) (string, bool, error) {
	m, ok := s.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok || m.DisplayName == "" {
		return "", false, nil
	}
	return m.DisplayName, true, nil
}

func (s *Static) Len() int {
	return len(s.byUsername)
}
