package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/Maulik-008/clock-software-sub000/internal/config"
	redisc "github.com/Maulik-008/clock-software-sub000/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	rootDocument     = "/index.html"
	workerScriptPath = "/sw.js"

	offlineAPIBody = `{"error": "Offline - request will be retried when online"}`
)

var staticExtensions = map[string]struct{}{
	".js": {}, ".css": {}, ".png": {}, ".jpg": {}, ".svg": {}, ".ico": {},
}

// Router classifies every gateway request into one of four strategies and
// executes it against the upstream origin, keeping the cache generations
// populated as a side effect.
type Router struct {
	store  *Store
	log    *zap.Logger
	client *http.Client
	origin *url.URL
	cfg    config.CacheConfig

	genStatic   string
	genRuntime  string
	genPrecache string
}

func NewRouter(rc *redisc.Client, originCfg config.OriginConfig, cacheCfg config.CacheConfig, log *zap.Logger) (*Router, error) {
	origin, err := url.Parse(originCfg.URL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid origin url: %q", originCfg.URL)
	}

	return &Router{
		store:       NewStore(rc, cacheCfg.Prefix),
		log:         log,
		client:      &http.Client{Timeout: originCfg.Timeout},
		origin:      origin,
		cfg:         cacheCfg,
		genStatic:   "static-" + cacheCfg.Version,
		genRuntime:  "runtime-" + cacheCfg.Version,
		genPrecache: "precache-" + cacheCfg.Version,
	}, nil
}

// CurrentGenerations returns the three generation names of this version.
func (r *Router) CurrentGenerations() []string {
	return []string{r.genStatic, r.genRuntime, r.genPrecache}
}

// Handle is the gateway entrypoint, mounted as the catch-all route. A panic
// anywhere below degrades to the app shell for navigations and to a gateway
// error for everything else.
func (r *Router) Handle(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("gateway handler panic", zap.Any("panic", rec))
			if !c.Writer.Written() {
				if isNavigation(c.Request) {
					r.serveAppShell(c)
					return
				}
				r.serveUnavailable(c, fmt.Errorf("gateway failure: %v", rec))
			}
		}
	}()

	req := c.Request

	if r.shouldSkip(req) {
		r.passThrough(c)
		return
	}

	switch {
	case isNavigation(req):
		r.handleNavigation(c)
	case r.isStaticAsset(req.URL.Path):
		r.handleStaticAsset(c)
	case r.isAPILike(req.URL.RequestURI()):
		r.handleAPILike(c)
	default:
		r.handleDefault(c)
	}
}

// shouldSkip mirrors the pass-through rules: only plain GET requests that
// do not target the worker script itself participate in caching.
func (r *Router) shouldSkip(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return true
	}
	return req.URL.Path == workerScriptPath
}

// isNavigation detects top-level document loads.
func isNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func (r *Router) isStaticAsset(p string) bool {
	if strings.Contains(p, "/assets/") || strings.Contains(p, "/audio/") || strings.Contains(p, "/manifest.json") {
		return true
	}
	_, ok := staticExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

func (r *Router) isAPILike(uri string) bool {
	if strings.Contains(uri, "/api/") {
		return true
	}
	for _, marker := range r.cfg.APIHostMarkers {
		if marker != "" && strings.Contains(uri, marker) {
			return true
		}
	}
	return false
}

// handleNavigation is network-first: a 2xx document is cloned into the
// runtime generation; offline falls back to the cached app shell.
func (r *Router) handleNavigation(c *gin.Context) {
	ctx := c.Request.Context()
	uri := c.Request.URL.RequestURI()

	entry, err := r.fetchOrigin(ctx, uri, false)
	if err == nil {
		if is2xx(entry.Status) {
			if putErr := r.store.Put(ctx, r.genRuntime, http.MethodGet, uri, entry); putErr != nil {
				r.log.Warn("runtime cache write failed", zap.String("url", uri), zap.Error(putErr))
			}
		}
		serveEntry(c, entry, "network")
		return
	}

	r.log.Warn("navigation fetch failed, falling back to app shell", zap.String("url", uri), zap.Error(err))
	r.serveAppShell(c)
}

// handleStaticAsset is cache-first; misses populate the static generation.
// A dead audio fetch yields an empty 404 so players fail silently.
func (r *Router) handleStaticAsset(c *gin.Context) {
	ctx := c.Request.Context()
	uri := c.Request.URL.RequestURI()

	if entry, ok := r.store.Lookup(ctx, []string{r.genStatic, r.genPrecache}, http.MethodGet, uri); ok {
		serveEntry(c, entry, "hit")
		return
	}

	entry, err := r.fetchOrigin(ctx, uri, false)
	if err == nil {
		if is2xx(entry.Status) {
			if putErr := r.store.Put(ctx, r.genStatic, http.MethodGet, uri, entry); putErr != nil {
				r.log.Warn("static cache write failed", zap.String("url", uri), zap.Error(putErr))
			}
		}
		serveEntry(c, entry, "miss")
		return
	}

	if strings.Contains(c.Request.URL.Path, "/audio/") {
		c.Data(http.StatusNotFound, "text/plain", nil)
		c.Abort()
		return
	}
	r.serveUnavailable(c, err)
}

// handleAPILike is network-only; failures synthesize a structured offline
// signal instead of a hard error.
func (r *Router) handleAPILike(c *gin.Context) {
	entry, err := r.fetchOrigin(c.Request.Context(), c.Request.URL.RequestURI(), false)
	if err != nil {
		c.Data(http.StatusServiceUnavailable, "application/json", []byte(offlineAPIBody))
		c.Abort()
		return
	}
	serveEntry(c, entry, "network")
}

// handleDefault is network-first with opportunistic runtime caching and an
// exact-entry fallback.
func (r *Router) handleDefault(c *gin.Context) {
	ctx := c.Request.Context()
	uri := c.Request.URL.RequestURI()

	entry, err := r.fetchOrigin(ctx, uri, false)
	if err == nil {
		if is2xx(entry.Status) {
			if putErr := r.store.Put(ctx, r.genRuntime, http.MethodGet, uri, entry); putErr != nil {
				r.log.Warn("runtime cache write failed", zap.String("url", uri), zap.Error(putErr))
			}
		}
		serveEntry(c, entry, "network")
		return
	}

	if cached, ok := r.store.Lookup(ctx, r.CurrentGenerations(), http.MethodGet, uri); ok {
		serveEntry(c, cached, "stale")
		return
	}
	r.serveUnavailable(c, err)
}

// serveAppShell is the final fallback for navigations: the cached root
// document, from any current generation.
func (r *Router) serveAppShell(c *gin.Context) {
	if entry, ok := r.store.Lookup(c.Request.Context(), r.CurrentGenerations(), http.MethodGet, rootDocument); ok {
		serveEntry(c, entry, "shell")
		return
	}
	r.serveUnavailable(c, fmt.Errorf("origin unreachable and app shell not cached"))
}

func (r *Router) serveUnavailable(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
		"ok":      0,
		"code":    http.StatusBadGateway,
		"message": err.Error(),
	})
}

// passThrough proxies the request verbatim with no cache interaction.
func (r *Router) passThrough(c *gin.Context) {
	target := r.resolve(c.Request.URL.RequestURI())
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		r.serveUnavailable(c, err)
		return
	}
	req.Header = c.Request.Header.Clone()

	resp, err := r.client.Do(req)
	if err != nil {
		r.serveUnavailable(c, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.serveUnavailable(c, err)
		return
	}
	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), body)
	c.Abort()
}

// fetchOrigin performs one upstream GET. With revalidate set, cache headers
// force the origin (and any intermediaries) to skip stale copies.
func (r *Router) fetchOrigin(ctx context.Context, uri string, revalidate bool) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.resolve(uri), nil)
	if err != nil {
		return Entry{}, err
	}
	if revalidate {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (r *Router) resolve(uri string) string {
	return r.origin.Scheme + "://" + r.origin.Host + uri
}

func serveEntry(c *gin.Context, e Entry, source string) {
	c.Header("x-ct-cache", source)
	contentType := e.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(e.Status, contentType, e.Body)
	c.Abort()
}

func is2xx(status int) bool { return status >= 200 && status < 300 }
