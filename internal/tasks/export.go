package tasks

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/formatter"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Collection names accepted by [ExportOpts.Collections].
const (
	CollectionSongs = "songs"
	CollectionSuno  = "suno"
	CollectionLiked = "liked"
)

// Collections lists every exportable collection in export order.
var Collections = []string{CollectionSongs, CollectionSuno, CollectionLiked}

var collectionTitles = map[string]string{
	CollectionSongs: "Uploaded Songs",
	CollectionSuno:  "Generated Songs",
	CollectionLiked: "Liked Songs",
}

// Source is satisfied by [catalog.Library].
type Source interface {
	List(ctx context.Context, c models.Catalog, criteria map[string]any) ([]*catalog.TrackMetadata, error)
	Liked(ctx context.Context) ([]*catalog.TrackMetadata, error)
}

// ExportOpts contains configuration for a library export.
type ExportOpts struct {
	Format      string   // Export format: text, csv, markdown, json
	OutputDir   string   // Base output directory (default: badmusic_export_{epoch})
	NumWorkers  int      // Concurrent workers (default: 3)
	Collections []string // Collections to export (default: all)
}

// CollectionResult is the outcome of exporting one collection.
type CollectionResult struct {
	Name     string `json:"name"`
	Tracks   int    `json:"tracks"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    error  `json:"-"`
	ErrorMsg string `json:"error,omitempty"`
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Format          string             `json:"format"`
	ExportedAt      time.Time          `json:"exported_at"`
	Total           int                `json:"total"`
	Successful      int                `json:"successful"`
	Failed          int                `json:"failed"`
	OutputDirectory string             `json:"output_directory"`
	ManifestPath    string             `json:"-"`
	Results         []CollectionResult `json:"results"`
}

// Exporter writes library collections to disk.
type Exporter struct {
	source Source
	logger *log.Logger
}

// NewExporter creates an Exporter reading from source. A nil logger discards output.
func NewExporter(source Source, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run exports every requested collection concurrently and writes a manifest.
//
// Individual collection failures are recorded in the result; the returned error
// is reserved for invalid options and manifest failures.
func (e *Exporter) Run(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}

	names, err := normalizeCollections(opts.Collections)
	if err != nil {
		return nil, err
	}
	ext, err := extension(opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("badmusic_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	opts.NumWorkers = min(opts.NumWorkers, len(names))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		Total:           len(names),
		OutputDirectory: opts.OutputDir,
		Results:         make([]CollectionResult, 0, len(names)),
	}

	jobs := make(chan string, len(names))
	results := make(chan CollectionResult, len(names))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.worker(ctx, &wg, jobs, results, opts, ext)
	}

	for i, name := range names {
		e.sendProgress(prog, fetchingUpdate(i+1, len(names), name))
		jobs <- name
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(names), res))
		} else {
			result.Failed++
			res.ErrorMsg = res.Error.Error()
			e.logger.Warn("export failed", "collection", res.Name, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, len(names), res))
		}
		result.Results = append(result.Results, res)
	}

	order := func(name string) int { return slices.Index(Collections, name) }
	slices.SortFunc(result.Results, func(a, b CollectionResult) int { return cmp.Compare(order(a.Name), order(b.Name)) })

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// worker exports collections from the jobs channel.
func (e *Exporter) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan string,
	results chan<- CollectionResult,
	opts ExportOpts,
	ext string,
) {
	defer wg.Done()

	for name := range jobs {
		if err := ctx.Err(); err != nil {
			results <- CollectionResult{Name: name, Error: err}
			continue
		}
		results <- e.exportCollection(ctx, name, opts, ext)
	}
}

// exportCollection loads and writes one collection.
func (e *Exporter) exportCollection(ctx context.Context, name string, opts ExportOpts, ext string) CollectionResult {
	result := CollectionResult{Name: name}

	tracks, err := e.load(ctx, name)
	if err != nil {
		result.Error = fmt.Errorf("failed to load %s: %w", name, err)
		return result
	}
	result.Tracks = len(tracks)

	data, err := formatter.Render(opts.Format, collectionTitles[name], tracks)
	if err != nil {
		result.Error = err
		return result
	}

	path := filepath.Join(opts.OutputDir, name+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Errorf("failed to write %s: %w", path, err)
		return result
	}

	e.logger.Debug("collection exported", "collection", name, "tracks", len(tracks), "file", path)
	result.File = path
	result.Success = true
	return result
}

func (e *Exporter) load(ctx context.Context, name string) ([]*catalog.TrackMetadata, error) {
	switch name {
	case CollectionSongs:
		return e.source.List(ctx, models.CatalogStandard, nil)
	case CollectionSuno:
		return e.source.List(ctx, models.CatalogGenerated, nil)
	default:
		return e.source.Liked(ctx)
	}
}

// normalizeCollections lower-cases, validates and de-duplicates names. Empty means all.
func normalizeCollections(names []string) ([]string, error) {
	if len(names) == 0 {
		return slices.Clone(Collections), nil
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if !slices.Contains(Collections, n) {
			return nil, fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidArgument, n)
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func extension(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", formatter.FormatText, "txt":
		return ".txt", nil
	case formatter.FormatCSV:
		return ".csv", nil
	case formatter.FormatMarkdown, "md":
		return ".md", nil
	case formatter.FormatJSON:
		return ".json", nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}
