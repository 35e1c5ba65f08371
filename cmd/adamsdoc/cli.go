package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/acquire"
	"github.com/fwojciec/adamsdoc/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Searcher    adamsdoc.Searcher
	Descriptors adamsdoc.DescriptorStore
	Downloader  adamsdoc.Downloader
	DownloadLog adamsdoc.DownloadLog
	TextCache   *fs.TextCache
	Indexer     adamsdoc.Indexer
	Retriever   adamsdoc.Retriever
	Pipeline    *acquire.Pipeline
	Asker       adamsdoc.Asker // nil when GEMINI_API_KEY is not set
	PDFDir      string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB       string `env:"ADAMSDOC_DB" help:"SQLite database path (default ~/.adamsdoc/adamsdoc.db)"`
	PDFDir   string `name:"pdf-dir" env:"ADAMSDOC_PDF_DIR" help:"Directory for downloaded PDFs (default ~/.adamsdoc/pdfs)"`
	CacheDir string `env:"ADAMSDOC_CACHE_DIR" help:"Directory for extracted text (default ~/.adamsdoc/cache)"`
	Verbose  bool   `short:"v" help:"Enable debug logging"`

	CacheMaxEntries int           `default:"50" env:"ADAMSDOC_CACHE_MAX_ENTRIES" help:"Maximum entries per in-memory cache"`
	CacheMaxEntryMB int64         `name:"cache-max-entry-mb" default:"10" env:"ADAMSDOC_CACHE_MAX_ENTRY_MB" help:"Largest value accepted by in-memory caches, in MB"`
	APITimeout      time.Duration `name:"api-timeout" default:"30s" env:"ADAMSDOC_API_TIMEOUT" help:"Search API request timeout"`
	BrowserTimeout  time.Duration `name:"browser-timeout" default:"60s" env:"ADAMSDOC_BROWSER_TIMEOUT" help:"Timeout for each browser navigation or page read"`
	DownloadTimeout time.Duration `default:"120s" env:"ADAMSDOC_DOWNLOAD_TIMEOUT" help:"PDF download timeout"`
	RetryAttempts   int           `default:"3" env:"ADAMSDOC_RETRY_ATTEMPTS" help:"Attempts per network operation"`
	ChunkSize       int           `default:"500" env:"ADAMSDOC_CHUNK_SIZE" help:"Target chunk size in characters"`
	NoBrowser       bool          `help:"Skip the headless browser search fallback"`
	GeminiAPIKey    string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key; enables embeddings and answers"`

	Search   SearchCmd   `cmd:"" help:"Search the registry for documents"`
	Download DownloadCmd `cmd:"" help:"Download documents by accession number"`
	Fetch    FetchCmd    `cmd:"" help:"Search, download, cache and index documents for a query"`
	Cache    CacheCmd    `cmd:"" help:"Extract and cache text for every PDF in a directory"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about cached documents"`
	Stats    StatsCmd    `cmd:"" help:"Show cache and download statistics"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search keywords"`
	Max   int    `short:"n" default:"20" help:"Maximum results"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	IDs  []string `arg:"" name:"id" help:"Accession numbers"`
	Hint string   `default:"general" help:"Grouping hint for the storage folder"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	Query    string `arg:"" help:"Search keywords"`
	Max      int    `short:"n" default:"20" help:"Maximum search results"`
	Target   int    `short:"t" default:"5" help:"Number of successful downloads to aim for"`
	Question string `short:"q" help:"Question to answer once documents are indexed"`
	TopK     int    `name:"top-k" default:"5" help:"Chunks retrieved for the question"`
}

// CacheCmd is the "cache" subcommand.
type CacheCmd struct {
	Dir string `arg:"" optional:"" help:"Directory to scan (default: PDF directory)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the cached documents"`
	TopK     int    `name:"top-k" default:"5" help:"Chunks retrieved for the question"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
