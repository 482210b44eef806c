package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/ports"
	"NewsIndexer/internal/siteurl"
)

const defaultEngineTimeout = 45 * time.Second

// ErrNotEligible is returned for articles that are not published or lack id, title or body.
var ErrNotEligible = errors.New("article is not eligible for indexing")

// NotifierDeps wires the engines and collaborators into the orchestrator.
type NotifierDeps struct {
	// Primary engines count towards MinPrimarySuccesses.
	Primary []engine.Submitter
	// Secondary engines, such as the sitemap task, only appear in the report.
	Secondary []engine.Submitter

	URLs                siteurl.Builder
	Alerter             ports.Alerter
	Logger              *slog.Logger
	EngineTimeout       time.Duration
	MinPrimarySuccesses int
	Now                 func() time.Time
}

// Notifier fans an article out to every indexing engine and aggregates the outcome.
type Notifier struct {
	primary      []engine.Submitter
	secondary    []engine.Submitter
	urls         siteurl.Builder
	alerter      ports.Alerter
	logger       *slog.Logger
	timeout      time.Duration
	minPrimaries int
	now          func() time.Time
}

// NewNotifier constructs the orchestration component.
func NewNotifier(deps NotifierDeps) *Notifier {
	n := &Notifier{
		primary:      deps.Primary,
		secondary:    deps.Secondary,
		urls:         deps.URLs,
		alerter:      deps.Alerter,
		logger:       deps.Logger,
		timeout:      deps.EngineTimeout,
		minPrimaries: deps.MinPrimarySuccesses,
		now:          deps.Now,
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if n.timeout <= 0 {
		n.timeout = defaultEngineTimeout
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.minPrimaries > len(n.primary) {
		n.minPrimaries = len(n.primary)
	}
	if n.minPrimaries < 0 {
		n.minPrimaries = 0
	}
	return n
}

// Engines lists every engine name in report order.
func (n *Notifier) Engines() []string {
	names := make([]string, 0, len(n.primary)+len(n.secondary))
	for _, s := range n.primary {
		names = append(names, s.Name())
	}
	for _, s := range n.secondary {
		names = append(names, s.Name())
	}
	return names
}

// Notify pushes the article URL to every engine concurrently. Engine failures
// never abort the run: the report always holds one result per engine.
func (n *Notifier) Notify(ctx context.Context, article domain.Article) (domain.Report, error) {
	if !article.Eligible() {
		return domain.Report{}, fmt.Errorf("%w: %q", ErrNotEligible, article.Slug)
	}
	return n.NotifyURL(ctx, n.urls.Article(article.Slug)), nil
}

// NotifyURL runs the fan-out for an already resolved page URL.
func (n *Notifier) NotifyURL(ctx context.Context, pageURL string) domain.Report {
	report := domain.Report{
		RunID:     uuid.NewString(),
		URL:       pageURL,
		StartedAt: n.now(),
	}
	logger := n.logger.With("run_id", report.RunID, "url", pageURL)
	logger.Info("indexing notification started", "engines", len(n.primary)+len(n.secondary))

	engines := append(append([]engine.Submitter(nil), n.primary...), n.secondary...)
	results := make([]domain.IndexingResult, len(engines))

	var wg conc.WaitGroup
	for i, s := range engines {
		wg.Go(func() {
			results[i] = n.run(ctx, s, pageURL)
		})
	}
	wg.Wait()

	report.Results = results
	for i, res := range results {
		if !res.Success {
			logger.Warn("engine failed", "service", res.Service, "error", res.Error)
			continue
		}
		report.Succeeded++
		if i < len(n.primary) {
			report.PrimarySucceeded++
		}
	}
	report.Healthy = report.PrimarySucceeded >= n.minPrimaries
	report.Duration = n.now().Sub(report.StartedAt)

	logger.Info("indexing notification finished",
		"summary", fmt.Sprintf("%d of %d engines succeeded", report.Succeeded, len(results)),
		"succeeded", report.Succeeded,
		"total", len(results),
		"duration", report.Duration)

	if !report.Healthy {
		n.raise(ctx, logger, report)
	}

	return report
}

// run bounds one engine by the engine timeout and converts panics into failed results.
func (n *Notifier) run(ctx context.Context, s engine.Submitter, pageURL string) domain.IndexingResult {
	name := s.Name()
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan domain.IndexingResult, 1)
	go func() {
		var res domain.IndexingResult
		if recovered := panics.Try(func() { res = s.Submit(ctx, pageURL) }); recovered != nil {
			res = domain.Failed(name, fmt.Errorf("engine panicked: %v", recovered.Value))
		}
		if res.Service == "" {
			res.Service = name
		}
		done <- res
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return domain.Failed(name, fmt.Errorf("engine did not finish within %s: %w", n.timeout, ctx.Err()))
	}
}

func (n *Notifier) raise(ctx context.Context, logger *slog.Logger, report domain.Report) {
	logger.Warn("primary indexing below threshold",
		"primary_succeeded", report.PrimarySucceeded,
		"required", n.minPrimaries)

	if n.alerter == nil {
		return
	}
	if err := n.alerter.Alert(ctx, formatAlert(report, n.minPrimaries)); err != nil {
		logger.Error("send indexing alert", "error", err)
	}
}

func formatAlert(report domain.Report, required int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Indexing degraded for %s\n", report.URL)
	fmt.Fprintf(&b, "Primary engines succeeded: %d (required %d)\n", report.PrimarySucceeded, required)
	for _, res := range report.Results {
		status := "ok"
		if !res.Success {
			status = "failed: " + res.Error
		}
		fmt.Fprintf(&b, "- %s: %s\n", res.Service, status)
	}
	fmt.Fprintf(&b, "Run: %s", report.RunID)
	return b.String()
}
