package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"ssotica-backend/internal/assert"
	"ssotica-backend/internal/components/chrono"
	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/internal/db"
	"ssotica-backend/internal/scrapers/ssotica"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_search_results = "search.results"
	report_search_rows    = "search.rows"
	report_search_dropped = "search.dropped_rows"
	report_search         = "search"
	report_db_query       = "db.query"
)

// Searcher is the part of the SSÓtica client the search depends on.
//
// note: fault injection point
type Searcher interface {
	EnsureAuthenticated(ctx context.Context) error
	QueryInstallments(ctx context.Context, rawName string) ([]byte, error)
}

// SearchResult is the outcome of a successful search, Suggestions is only
// filled when Installments is empty.
type SearchResult struct {
	Installments []ssotica.Installment
	Suggestions  []string
	Cached       bool
}

type InstallmentService struct {
	searcher Searcher
	tel      telemetry.API
	time     chrono.API
	cache    *expirable.LRU[string, SearchResult]
	log      *db.Queries
}

type serviceConfig struct {
	tel       telemetry.API
	time      chrono.API
	cacheSize int
	cacheTTL  time.Duration
	log       *db.Queries
}

type Option func(cfg *serviceConfig)

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

func WithChrono(clock chrono.API) Option {
	return func(cfg *serviceConfig) {
		cfg.time = clock
	}
}

// WithCache keeps up to size results for ttl, a zero ttl disables the cache.
// Results are keyed by the name exactly as it is sent to SSÓtica.
func WithCache(size int, ttl time.Duration) Option {
	return func(cfg *serviceConfig) {
		cfg.cacheSize = size
		cfg.cacheTTL = ttl
	}
}

// WithSearchLog records every search in the search_log table.
func WithSearchLog(qry *db.Queries) Option {
	return func(cfg *serviceConfig) {
		cfg.log = qry
	}
}

func NewInstallmentService(searcher Searcher, options ...Option) (*InstallmentService, error) {
	assert.NotNil(searcher, "searcher")

	cfg := serviceConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	s := &InstallmentService{
		searcher: searcher,
		tel:      telemetry.SlogAPI{},
		log:      cfg.log,
	}
	if cfg.tel != nil {
		s.tel = cfg.tel
	}
	s.tel = telemetry.NewScopedAPI("service", s.tel)

	if cfg.time != nil {
		s.time = cfg.time
	} else {
		standard, err := chrono.NewStandardImpl()
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
		s.time = standard
	}

	if cfg.cacheTTL > 0 {
		size := cfg.cacheSize
		if size <= 0 {
			size = 256
		}
		s.cache = expirable.NewLRU[string, SearchResult](size, nil, cfg.cacheTTL)
	}

	return s, nil
}

// Search returns the open installments of customers matching rawName.
func (s *InstallmentService) Search(ctx context.Context, rawName string) ([]ssotica.Installment, error) {
	result, err := s.SearchDetailed(ctx, rawName)
	if err != nil {
		return nil, err
	}
	return result.Installments, nil
}

// SearchDetailed is Search with near-miss customer names for empty results.
func (s *InstallmentService) SearchDetailed(ctx context.Context, rawName string) (SearchResult, error) {
	criteria, err := NewSearchCriteria(rawName)
	if err != nil {
		return SearchResult{}, err
	}

	start := s.time.Now()

	if s.cache != nil {
		cached, hit := s.cache.Get(criteria.RawName)
		if hit {
			cached.Installments = slices.Clone(cached.Installments)
			cached.Suggestions = slices.Clone(cached.Suggestions)
			cached.Cached = true
			s.writeLog(ctx, criteria, cached, nil, start)
			return cached, nil
		}
	}

	result, err := s.search(ctx, criteria)
	s.writeLog(ctx, criteria, result, err, start)
	if err != nil {
		return SearchResult{}, err
	}

	s.tel.ReportCount(report_search_results, int64(len(result.Installments)))

	if s.cache != nil {
		s.cache.Add(criteria.RawName, SearchResult{
			Installments: slices.Clone(result.Installments),
			Suggestions:  slices.Clone(result.Suggestions),
		})
	}
	return result, nil
}

func (s *InstallmentService) search(ctx context.Context, criteria SearchCriteria) (SearchResult, error) {
	body, err := s.query(ctx, criteria)
	if err != nil {
		s.tel.ReportWarning(report_search, err, criteria.RawName)
		return SearchResult{}, err
	}

	extraction, err := ssotica.ExtractPage(body)
	if err != nil {
		s.tel.ReportBroken(report_search, fmt.Errorf("extract: %w", err), criteria.RawName)
		return SearchResult{}, ssotica.NewSearchError(err, "read results page")
	}
	s.tel.ReportCount(report_search_rows, int64(extraction.Rows))
	if extraction.Dropped > 0 {
		s.tel.ReportCount(report_search_dropped, int64(extraction.Dropped))
		s.tel.ReportWarning(report_search, "rows without customer name or amount were skipped", extraction.Dropped, criteria.RawName)
	}
	all := extraction.Installments

	result := SearchResult{
		Installments: FilterInstallments(all, criteria.NormalizedName),
	}
	if len(result.Installments) == 0 {
		result.Suggestions = s.suggest(ctx, criteria, all)
	}
	return result, nil
}

// query logs in when needed and runs the remote search, it logs in again
// once when the remote system reports the session as expired.
func (s *InstallmentService) query(ctx context.Context, criteria SearchCriteria) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		err := s.searcher.EnsureAuthenticated(ctx)
		if err != nil {
			return nil, ssotica.NewSearchError(err, "authenticate")
		}

		body, err := s.searcher.QueryInstallments(ctx, criteria.RawName)
		if err == nil {
			return body, nil
		}
		if attempt == 0 && errors.Is(err, ssotica.ErrSessionExpired) {
			s.tel.ReportDebug("session expired, logging in again", criteria.RawName)
			continue
		}
		return nil, ssotica.NewSearchError(err, "search installments of '%s'", criteria.RawName)
	}
}

func (s *InstallmentService) suggest(ctx context.Context, criteria SearchCriteria, extracted []ssotica.Installment) []string {
	candidates := make([]string, 0, len(extracted))
	for _, record := range extracted {
		candidates = append(candidates, record.CustomerName)
	}
	if s.log != nil {
		known, err := s.log.GetKnownCustomerNames(ctx)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "GetKnownCustomerNames")
		}
		candidates = append(candidates, known...)
	}
	return Suggest(criteria.NormalizedName, candidates)
}

func (s *InstallmentService) writeLog(ctx context.Context, criteria SearchCriteria, result SearchResult, searchErr error, start time.Time) {
	if s.log == nil {
		return
	}

	var errorKind sql.NullString
	if searchErr != nil {
		errorKind = sql.NullString{String: string(ssotica.KindOf(searchErr)), Valid: true}
	}
	var cached int64
	if result.Cached {
		cached = 1
	}

	// the search already happened, a cancelled request should still be logged
	err := s.log.CreateSearchLog(context.WithoutCancel(ctx), db.CreateSearchLogParams{
		NormalizedName: criteria.NormalizedName,
		RawName:        criteria.RawName,
		ResultCount:    int64(len(result.Installments)),
		ErrorKind:      errorKind,
		Cached:         cached,
		DurationMs:     s.time.Now().Sub(start).Milliseconds(),
		SearchedAt:     start.Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateSearchLog", criteria.RawName)
	}
}

// PruneSearchLog deletes search log rows older than retention.
func (s *InstallmentService) PruneSearchLog(ctx context.Context, retention time.Duration) error {
	if s.log == nil {
		return nil
	}
	err := s.log.DeleteSearchLogsBefore(ctx, s.time.Now().Add(-retention).Unix())
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteSearchLogsBefore")
		return err
	}
	return nil
}

// RecentSearches returns the latest search log rows, newest first.
func (s *InstallmentService) RecentSearches(ctx context.Context, limit int) ([]db.SearchLog, error) {
	if s.log == nil {
		return nil, nil
	}
	rows, err := s.log.GetRecentSearchLogs(ctx, int64(limit))
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetRecentSearchLogs")
		return nil, err
	}
	return rows, nil
}
