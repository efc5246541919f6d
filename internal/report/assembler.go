// internal/report/assembler.go
package report

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"forecast-bot/internal/alias"
	"forecast-bot/internal/catalog"
	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/common/metrics"
	"forecast-bot/internal/facts"
	"forecast-bot/internal/table"
)

const (
	ModeText   = "text"
	ModeExport = "export"
)

// LongTermGrowth is the analyst variable shown as a single value.
const LongTermGrowth = "Долгосрочный рост ВВП"

// TableLoader reads the forecast table a location resolves to.
type TableLoader interface {
	ReadGroupTable(ctx context.Context, loc catalog.Location, sheet string) (*table.Table, error)
}

// Assembler merges forecast tables with facts into text messages or an
// export workbook.
type Assembler struct {
	tables  TableLoader
	matcher *facts.Matcher
	locale  facts.Locale
	logger  logger.Logger
	tracer  trace.Tracer
}

func NewAssembler(tables TableLoader, matcher *facts.Matcher, locale facts.Locale, log logger.Logger) *Assembler {
	return &Assembler{
		tables:  tables,
		matcher: matcher,
		locale:  locale,
		logger:  log.WithFields(map[string]interface{}{"component": "report-assembler"}),
		tracer:  otel.Tracer("forecast-bot/report"),
	}
}

// section is one unit sheet of a resolved location, sign-corrected and bound
// to its facts sheet.
type section struct {
	unit       catalog.Unit
	table      *table.Table
	facts      *facts.Lookup
	correction facts.Correction
}

// Variables returns the display labels offered for loc, in table order.
func (a *Assembler) Variables(ctx context.Context, loc catalog.Location) (*alias.Mapping, error) {
	t, err := a.tables.ReadGroupTable(ctx, loc, loc.Document.Units()[0].Sheet())
	if err != nil {
		return nil, err
	}
	return alias.Normalize(nonEmpty(t.Labels())), nil
}

func (a *Assembler) load(ctx context.Context, loc catalog.Location) ([]section, error) {
	units := loc.Document.Units()
	sections := make([]section, 0, len(units))
	for _, unit := range units {
		t, err := a.tables.ReadGroupTable(ctx, loc, unit.Sheet())
		if err != nil {
			return nil, err
		}
		if len(t.Columns()) == 0 {
			return nil, apperrors.NewMalformedTableError(loc.Title(), fmt.Errorf("table has no forecast columns"))
		}
		corrected, corr := facts.CorrectBalanceOfPayments(loc.Author, loc.Group.Name, t)
		lookup, err := a.matcher.Lookup(ctx, loc.Author, loc.Document, unit)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section{unit: unit, table: corrected, facts: lookup, correction: corr})
	}
	return sections, nil
}

// start opens a span and returns a finish func recording the outcome in both
// the span and the report metrics.
func (a *Assembler) start(ctx context.Context, mode string, loc catalog.Location) (context.Context, logger.Logger, func(error) error) {
	buildID := uuid.New().String()
	ctx, span := a.tracer.Start(ctx, "report."+mode, trace.WithAttributes(
		attribute.String("build_id", buildID),
		attribute.String("author", loc.Author.String()),
		attribute.String("document", loc.Title()),
		attribute.String("group", loc.Group.Name),
	))
	log := a.logger.WithFields(map[string]interface{}{
		"build_id": buildID,
		"mode":     mode,
		"document": loc.Title(),
		"group":    loc.Group.Name,
	})
	begin := time.Now()

	return ctx, log, func(err error) error {
		defer span.End()
		metrics.ReportDuration.WithLabelValues(mode).Observe(time.Since(begin).Seconds())
		if err == nil {
			metrics.ReportsBuilt.WithLabelValues(mode).Inc()
			log.Info("Report built", map[string]interface{}{"duration_ms": time.Since(begin).Milliseconds()})
			return nil
		}
		err = classify(err)
		code := apperrors.CodeOf(err)
		metrics.ReportsFailed.WithLabelValues(mode, string(code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		log.Warn("Report build failed", map[string]interface{}{"error": err.Error(), "error_code": string(code)})
		return err
	}
}

// classify keeps coded errors and wraps everything else as a build failure.
func classify(err error) error {
	var stdErr *apperrors.StandardError
	if stderrors.As(err, &stdErr) {
		return err
	}
	return apperrors.NewReportBuildFailedError(err)
}

func nonEmpty(labels []string) []string {
	out := labels[:0:0]
	for _, l := range labels {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
