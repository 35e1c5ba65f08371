package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/acquire"
	"github.com/fwojciec/adamsdoc/fs"
	"github.com/fwojciec/adamsdoc/gemini"
	adamshttp "github.com/fwojciec/adamsdoc/http"
	"github.com/fwojciec/adamsdoc/lru"
	"github.com/fwojciec/adamsdoc/pdf"
	"github.com/fwojciec/adamsdoc/rag"
	"github.com/fwojciec/adamsdoc/retry"
	"github.com/fwojciec/adamsdoc/rod"
	adamsslog "github.com/fwojciec/adamsdoc/slog"
	"github.com/fwojciec/adamsdoc/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory holding the default database, PDF and cache paths.
	// Set before calling Run().
	DataDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Browser used by the search fallback; launched on first use.
	Browser *rod.Browser
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Browser != nil {
		_ = m.Browser.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("adamsdoc"),
		kong.Description("Acquire NRC ADAMS documents and answer questions over their text."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'adamsdoc --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := m.wire(ctx, cli, cmd, deps, logger); err != nil {
		_ = m.Close()
		return err
	}
	defer m.Close()

	return kongCtx.Run(deps)
}

// wire builds the services for cmd and stores them in deps.
func (m *Main) wire(ctx context.Context, cli *CLI, cmd string, deps *Dependencies, logger *slog.Logger) error {
	dbPath := orDefault(cli.DB, filepath.Join(m.DataDir, "adamsdoc.db"))
	pdfDir := orDefault(cli.PDFDir, filepath.Join(m.DataDir, "pdfs"))
	cacheDir := orDefault(cli.CacheDir, filepath.Join(m.DataDir, "cache"))
	deps.PDFDir = pdfDir

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set ADAMSDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	deps.Descriptors = sqlite.NewDescriptorService(m.DB)
	deps.DownloadLog = sqlite.NewDownloadLog(m.DB)

	textCache := fs.NewTextCache(cacheDir, pdf.NewExtractor())
	if err := textCache.Open(); err != nil {
		return fmt.Errorf("failed to open text cache at %q: %w", cacheDir, err)
	}
	deps.TextCache = textCache

	policy := func(op string) retry.Policy {
		p := retry.DefaultPolicy()
		p.MaxAttempts = cli.RetryAttempts
		p.OnRetry = adamsslog.RetryLogger(logger, op)
		return p
	}
	cacheOpts := []lru.Option{
		lru.WithMaxEntries(cli.CacheMaxEntries),
		lru.WithMaxEntryBytes(cli.CacheMaxEntryMB << 20),
	}

	strategies := []adamsdoc.SearchStrategy{
		adamsslog.NewLoggingStrategy(adamshttp.NewSearchAPI(
			adamshttp.WithTimeout(cli.APITimeout),
			adamshttp.WithRetryPolicy(policy("search api")),
		), logger),
	}
	if !cli.NoBrowser {
		m.Browser = rod.NewBrowser(rod.WithNavigationTimeout(cli.BrowserTimeout))
		strategies = append(strategies, adamsslog.NewLoggingStrategy(acquire.NewBrowserStrategy(
			rod.NewLoggingBrowser(m.Browser, logger),
			acquire.WithNavigationPolicy(policy("navigate to results")),
		), logger))
	}
	searchCache := lru.New[[]*adamsdoc.Descriptor](cacheOpts...)
	deps.Searcher = adamsslog.NewLoggingSearcher(acquire.NewSearcher(strategies,
		acquire.WithSearchCache(adamsslog.NewLoggingCache[[]*adamsdoc.Descriptor](searchCache, "search", logger)),
	), logger)

	downloadCache := lru.New[*adamsdoc.DownloadResult](cacheOpts...)
	deps.Downloader = adamsslog.NewLoggingDownloader(acquire.NewCachedDownloader(
		adamshttp.NewDownloader(pdfDir,
			adamshttp.WithTimeout(cli.DownloadTimeout),
			adamshttp.WithRetryPolicy(policy("download")),
		),
		adamsslog.NewLoggingCache[*adamsdoc.DownloadResult](downloadCache, "download", logger),
	), logger)

	engineOpts := []rag.Option{rag.WithChunkSize(cli.ChunkSize)}
	var client *genai.Client
	if cli.GeminiAPIKey != "" {
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cli.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		engineOpts = append(engineOpts, rag.WithEmbedder(adamsslog.NewLoggingEmbedder(gemini.NewEmbedder(client, ""), logger)))
	}
	engine := rag.NewEngine(engineOpts...)
	deps.Indexer = adamsslog.NewLoggingIndexer(engine, logger)
	deps.Retriever = adamsslog.NewLoggingRetriever(engine, logger)

	if client != nil && (cmd == "ask" || cmd == "fetch") {
		topK := cli.Ask.TopK
		if cmd == "fetch" {
			topK = cli.Fetch.TopK
		}
		askerOpts := []gemini.AskerOption{gemini.WithTopK(topK)}
		if counter, err := gemini.NewTokenCounter(tokenizerModel); err != nil {
			logger.Warn("token counter unavailable; prompt size is not capped", "err", err)
		} else {
			askerOpts = append(askerOpts, gemini.WithTokenBudget(counter, promptTokenBudget))
		}
		deps.Asker = adamsslog.NewLoggingAsker(gemini.NewAsker(client, deps.Retriever, askerOpts...), logger)
	}

	batch := acquire.NewBatch(deps.Downloader,
		acquire.WithDownloadLog(deps.DownloadLog),
		acquire.WithProgress(func(_ *adamsdoc.Descriptor, r *adamsdoc.DownloadResult) {
			printDownload(deps.Stdout, r)
		}),
	)
	deps.Pipeline = acquire.NewPipeline(deps.Searcher, batch,
		adamsslog.NewLoggingTextCache(textCache, logger),
		deps.Indexer,
		acquire.WithDescriptorStore(deps.Descriptors),
	)

	return nil
}

// tokenizerModel is used for local token counting.
const tokenizerModel = "gemini-2.5-flash"

// promptTokenBudget caps the excerpts sent with a question.
const promptTokenBudget = 100_000

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".adamsdoc"
	}
	return filepath.Join(home, ".adamsdoc")
}
