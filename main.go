package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fact_check_news/cache"
	"fact_check_news/checker"
	"fact_check_news/config"
	"fact_check_news/page"
	"fact_check_news/report"
	"fact_check_news/server"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	articlePath := flag.String("article", "", "path to an article to fact-check (- for stdin)")
	backendURL := flag.String("backend", "", "fact-check backend base URL (overrides config.backend_url)")
	local := flag.Bool("local", false, "with --article, run the checker in-process instead of calling a backend")
	htmlPath := flag.String("html", "", "with --article, also write the report as HTML to this path")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
	}

	// Web server mode（页面与 /api/fact-check 同进程）
	if *serve {
		if *addr != "" {
			cfg.ServerAddr = *addr
		}
		if err := runServer(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *articlePath == "" {
		fmt.Fprintln(os.Stderr, "--serve or --article is required")
		os.Exit(1)
	}
	if err := runCheck(cfg, *articlePath, *local, *htmlPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cfg config.Config) error {
	chk, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var reportCache cache.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		rc := cache.NewRedis(rdb, cfg.CacheTTL())
		defer rc.Close()
		reportCache = rc
		log.Printf("Report cache: redis %s", cfg.Redis.Addr)
	} else {
		reportCache = cache.NewMemory(cfg.CacheTTL())
	}

	base := cfg.BackendURL
	if base == "" {
		base = loopbackURL(cfg.ServerAddr)
	}
	srv, err := server.New(server.Options{
		Checker:        chk,
		Backend:        page.NewHTTPBackend(base, nil, cfg.RequestTimeout()),
		Cache:          reportCache,
		RequestTimeout: cfg.RequestTimeout(),
		Verbose:        verbose,
		Logger:         log.Default(),
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting web server on %s (page backend %s)", cfg.ServerAddr, base)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err = httpSrv.Shutdown(shutCtx)
	srv.Close()
	return err
}

func runCheck(cfg config.Config, path string, local bool, htmlPath string) error {
	article, err := readArticle(path)
	if err != nil {
		return err
	}

	var backend page.Backend
	if local {
		chk, err := buildChecker(cfg)
		if err != nil {
			return err
		}
		backend = checkerBackend{chk}
	} else {
		base := cfg.BackendURL
		if base == "" {
			base = loopbackURL(cfg.ServerAddr)
		}
		backend = page.NewHTTPBackend(base, nil, cfg.RequestTimeout())
		log.Printf("[cli] fact-checking %s via %s", path, base)
	}

	ctrl, err := page.NewController(backend)
	if err != nil {
		return err
	}
	ctrl.UpdateArticle(article)
	ctrl.Submit(context.Background())

	st := ctrl.Snapshot()
	if st.Error != "" {
		return errors.New(st.Error)
	}
	fmt.Println(st.Report)

	if htmlPath != "" {
		if err := report.WriteFile(htmlPath, "Fact-Check Report", st.Report); err != nil {
			return err
		}
		log.Printf("[cli] report written to %s", htmlPath)
	}
	return nil
}

func readArticle(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func buildChecker(cfg config.Config) (*checker.Checker, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	var search checker.Searcher
	if cfg.Search.APIKey != "" {
		bs, err := checker.NewBraveSearch(checker.SearchSettings{
			APIKey:  cfg.Search.APIKey,
			BaseURL: cfg.Search.BaseURL,
			Count:   cfg.Search.Count,
		}, nil)
		if err != nil {
			return nil, err
		}
		search = bs
	} else {
		log.Printf("search.api_key not set; claims are checked without web search")
	}
	extractTimeout, verifyTimeout, reportTimeout := cfg.Checker.StageTimeouts()
	return checker.New(llm, search, checker.Options{
		MaxClaims:      cfg.Checker.MaxClaims,
		Parallel:       cfg.Checker.Parallel,
		ExtractTimeout: extractTimeout,
		VerifyTimeout:  verifyTimeout,
		ReportTimeout:  reportTimeout,
		Verbose:        verbose,
		Logger:         log.Default(),
	})
}

// buildLLM 按配置选择模型；未配置时退回离线 mock，报告内容为占位文本。
func buildLLM(cfg config.Config) (checker.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" || cfg.LLM.Provider == "mock" {
		log.Printf("WARNING: no llm provider configured (set OPENAI_API_KEY or llm.provider); reports come from the offline mock model and contain no real verdicts")
		return checker.MockLLM{}, nil
	}
	settings := &checker.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch settings.Provider {
	case "openai":
	case "deepseek":
		// DeepSeek 走 OpenAI 兼容接口，必须填写 base_url。
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return nil, fmt.Errorf("llm provider %s not supported", settings.Provider)
	}
	return checker.NewOpenAILLMFromConfig(settings)
}

// loopbackURL turns a listen address into a URL this host can dial.
func loopbackURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
