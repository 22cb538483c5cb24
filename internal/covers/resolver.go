package covers

import (
	"fmt"

	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/settings"
)

// Resolver fills in the cover a track should be shown with.
type Resolver struct {
	overrides   *Overrides
	settings    settings.Reader
	placeholder string
	fallback    string
}

// NewResolver creates a resolver. placeholderURL must contain a single %s
// that receives the track id; fallback is used when no other cover applies.
func NewResolver(overrides *Overrides, s settings.Reader, placeholderURL, fallback string) *Resolver {
	return &Resolver{
		overrides:   overrides,
		settings:    s,
		placeholder: placeholderURL,
		fallback:    fallback,
	}
}

// Resolve returns a copy of t whose Cover is, in order: the user override,
// the track's own cover, a placeholder derived from the track id when random
// covers are enabled, or the bundled default.
func (r *Resolver) Resolve(t playlist.Track) playlist.Track {
	t.Cover = r.coverFor(t)
	return t
}

// ResolveAll resolves every track of the slice into a new slice.
func (r *Resolver) ResolveAll(tracks []playlist.Track) []playlist.Track {
	result := make([]playlist.Track, len(tracks))
	for i, t := range tracks {
		result[i] = r.Resolve(t)
	}
	return result
}

func (r *Resolver) coverFor(t playlist.Track) string {
	if r.overrides != nil {
		if uri, ok := r.overrides.Get(t.ID); ok {
			return uri
		}
	}
	if t.Cover != "" {
		return t.Cover
	}
	if r.placeholder != "" && r.settings != nil && r.settings.Get().ShowRandomCoverArt {
		return fmt.Sprintf(r.placeholder, t.ID)
	}
	return r.fallback
}
