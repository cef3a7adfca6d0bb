package offline

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Install populates the static generation from the precache manifest and
// registers the runtime generation (empty is fine). Each asset is fetched
// with revalidation headers so no stale intermediary copy sneaks in. A
// failed asset is logged and skipped; Install itself only fails when the
// cache backend is unreachable.
func (r *Router) Install(ctx context.Context) error {
	for _, gen := range r.CurrentGenerations() {
		if err := r.store.Register(ctx, gen); err != nil {
			return err
		}
	}

	for _, assetPath := range r.cfg.PrecacheManifest {
		entry, err := r.fetchOrigin(ctx, assetPath, true)
		if err != nil {
			r.log.Warn("precache fetch failed", zap.String("path", assetPath), zap.Error(err))
			continue
		}
		if !is2xx(entry.Status) {
			r.log.Warn("precache fetch returned non-2xx",
				zap.String("path", assetPath), zap.Int("status", entry.Status))
			continue
		}
		if err := r.store.Put(ctx, r.genStatic, http.MethodGet, assetPath, entry); err != nil {
			return err
		}
	}

	r.log.Info("precache install complete",
		zap.String("generation", r.genStatic),
		zap.Int("manifest_size", len(r.cfg.PrecacheManifest)))
	return nil
}

// Activate deletes every registered generation whose name is not among the
// current version's three names. After Activate the gateway serves all
// requests against the new generations only.
func (r *Router) Activate(ctx context.Context) error {
	current := map[string]struct{}{}
	for _, gen := range r.CurrentGenerations() {
		current[gen] = struct{}{}
	}

	registered, err := r.store.Generations(ctx)
	if err != nil {
		return err
	}
	for _, gen := range registered {
		if _, ok := current[gen]; ok {
			continue
		}
		deleted, err := r.store.DropGeneration(ctx, gen)
		if err != nil {
			return err
		}
		r.log.Info("retired stale cache generation",
			zap.String("generation", gen), zap.Int64("entries", deleted))
	}
	return nil
}

// Purge drops every cache generation, current ones included.
func (r *Router) Purge(ctx context.Context) (int64, error) {
	return r.store.Purge(ctx)
}

// Generations exposes the registry for the maintenance API.
func (r *Router) Generations(ctx context.Context) ([]string, error) {
	return r.store.Generations(ctx)
}
