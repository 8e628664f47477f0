package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fact_check_news/cache"
	"fact_check_news/checker"
	"fact_check_news/page"
)

//go:embed web/index.html
var embeddedWeb embed.FS

var indexTmpl = template.Must(template.ParseFS(embeddedWeb, "web/index.html"))

// Options wires the server's collaborators.
type Options struct {
	// Checker serves POST /api/fact-check.
	Checker *checker.Checker
	// Backend is what page controllers call; normally an HTTP client for
	// this same server's fact-check endpoint.
	Backend page.Backend
	// Cache is optional.
	Cache cache.Cache
	// RequestTimeout bounds a page submit. Zero means no limit.
	RequestTimeout time.Duration
	Verbose        bool
	Logger         *log.Logger
}

type Server struct {
	checker  *checker.Checker
	backend  page.Backend
	cache    cache.Cache
	sessions *sessionStore
	timeout  time.Duration
	verbose  bool
	logger   *log.Logger

	// Page submits outlive the request that started them.
	baseCtx  context.Context
	cancel   context.CancelFunc
	inFlight sync.WaitGroup
}

func New(opts Options) (*Server, error) {
	if opts.Checker == nil {
		return nil, errors.New("fact checker required")
	}
	if opts.Backend == nil {
		return nil, errors.New("page backend required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		checker:  opts.Checker,
		backend:  opts.Backend,
		cache:    opts.Cache,
		sessions: newStore(),
		timeout:  opts.RequestTimeout,
		verbose:  opts.Verbose,
		logger:   opts.Logger,
		baseCtx:  ctx,
		cancel:   cancel,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/fact-check", s.handleFactCheck)
	})

	r.Get("/", s.handleIndex)
	r.Post("/check", s.handleCheck)
	r.Post("/clear", s.handleClear)
	r.Get("/report.html", s.handleReportHTML)
	return r
}

// Close cancels page submits still running and waits for them to finish.
func (s *Server) Close() {
	s.cancel()
	s.inFlight.Wait()
}

func (s *Server) infof(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	s.logger.Printf("[INFO] "+format, args...)
}
