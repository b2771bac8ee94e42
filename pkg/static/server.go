package static

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/percylabs/percyd/pkg/httputil"
	"github.com/percylabs/percyd/pkg/logging"
)

// Options configures the static server.
type Options struct {
	// BasePath mounts the served directory under a URL prefix.
	BasePath string

	// CleanURLs resolves extensionless request paths to .html files and
	// strips html suffixes from sitemap URLs.
	CleanURLs bool

	// Rewrites maps request paths to alternate file paths. When several
	// rules match, the last configured one wins.
	Rewrites []Rule
}

// Server serves a directory of files with rewrite and sitemap support.
type Server struct {
	fsys fs.FS
	opts Options
	log  *slog.Logger

	httpServer *http.Server
	listener   net.Listener
	addr       string
}

// NewServer creates a static server over fsys, typically os.DirFS of the
// site root.
func NewServer(addr string, fsys fs.FS, opts Options, facility *logging.Facility) *Server {
	if facility == nil {
		facility = logging.Nop()
	}

	s := &Server{
		fsys: fsys,
		opts: opts,
		log:  facility.Logger(),
		addr: addr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("/", s.handleFile)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the server's handler, for tests that mount it without
// binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. It returns once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln

	s.log.Info("starting static server", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("static server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address. Only valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleSitemap handles GET /sitemap.xml, generating the document fresh on
// every request. Generation failures surface as a 500 JSON error, never a
// crash.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	origin := "http://" + r.Host

	doc, err := Sitemap(s.fsys, s.opts.Rewrites, s.opts.CleanURLs, s.opts.BasePath, origin)
	if err != nil {
		s.log.Error("sitemap generation failed", "error", err)
		httputil.WriteError(w, fmt.Errorf("generating sitemap: %w", err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handleFile serves the file resolved from the request path through the
// base path, forward rewrites, and clean-URL candidates.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path

	if s.opts.BasePath != "" {
		base := "/" + strings.Trim(s.opts.BasePath, "/")
		rest, ok := strings.CutPrefix(p, base)
		// The remainder must fall on a segment boundary; a path that
		// merely shares the base as a string prefix is not under it.
		if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
			http.NotFound(w, r)
			return
		}
		p = rest
		if p == "" {
			p = "/"
		}
	}

	// Later-configured rules take precedence, matching the sitemap's
	// inversion semantics.
	for i := len(s.opts.Rewrites) - 1; i >= 0; i-- {
		if rewritten, ok := s.opts.Rewrites[i].Apply(p); ok {
			p = rewritten
			break
		}
	}

	for _, candidate := range s.fileCandidates(p) {
		name := strings.TrimPrefix(candidate, "/")
		info, err := fs.Stat(s.fsys, name)
		if err != nil || info.IsDir() {
			continue
		}
		http.ServeFileFS(w, r, s.fsys, name)
		return
	}

	http.NotFound(w, r)
}

// fileCandidates lists the on-disk paths a request path may resolve to, in
// preference order.
func (s *Server) fileCandidates(p string) []string {
	if strings.HasSuffix(p, "/") {
		return []string{p + "index.html"}
	}

	candidates := []string{p}
	if s.opts.CleanURLs && path.Ext(p) == "" {
		candidates = append(candidates, p+".html", p+"/index.html")
	}
	return candidates
}
