package spacetraveling

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

// Prebuild fetches the newest posts, up to PrebuildLimit, and stores their
// snapshots so their pages are served without a content API round trip. It
// returns how many snapshots were written.
func (a *App) Prebuild(ctx context.Context) (int, error) {
	catalog, err := a.Cache.Catalog(ctx)
	if err != nil {
		return 0, fmt.Errorf("spacetraveling: prebuild catalog: %w", err)
	}
	n := 0
	for _, s := range catalog {
		if n >= a.Config.PrebuildLimit {
			break
		}
		if s.UID == "" {
			continue
		}
		detail, err := a.Content.GetByUID(ctx, "", s.UID)
		if errors.Is(err, prismic.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("spacetraveling: prebuild %q: %w", s.UID, err)
		}
		if err := a.Store.SaveSnapshot(Snapshot{Slug: s.UID, Post: detail}); err != nil {
			return n, fmt.Errorf("spacetraveling: save snapshot %q: %w", s.UID, err)
		}
		n++
	}
	return n, nil
}
