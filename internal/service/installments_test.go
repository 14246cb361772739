package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ssotica-backend/internal/components/chrono"
	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/internal/db"
	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/pkg/configutil"
	"ssotica-backend/pkg/migrations"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var fixedTime = chrono.FixedImpl{Instant: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}

func newTestService(t *testing.T, searcher Searcher, options ...Option) (*InstallmentService, *telemetry.RecorderAPI) {
	tel := &telemetry.RecorderAPI{}
	options = append([]Option{WithTelemetry(tel), WithChrono(fixedTime)}, options...)
	s, err := NewInstallmentService(searcher, options...)
	require.NoError(t, err)
	return s, tel
}

func TestSearchEmptyName(t *testing.T) {
	searcher := &fakeSearcher{}
	s, _ := newTestService(t, searcher)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := s.Search(context.Background(), name)
		require.ErrorIs(t, err, ssotica.ErrInvalidInput)
		require.Equal(t, ssotica.KindInvalidInput, ssotica.KindOf(err))
	}

	logins, queries := searcher.Calls()
	require.Equal(t, 0, logins)
	require.Equal(t, 0, queries)
}

func TestSearchFiltersAndDedups(t *testing.T) {
	maria2 := installment("Maria Silva", 2, 6)
	maria7 := installment("Maria Silva", 7, 8)
	joao := installment("João Pereira", 1, 2)
	searcher := &fakeSearcher{
		page: renderListing([]ssotica.Installment{maria2, maria7, maria2, joao}),
	}
	s, tel := newTestService(t, searcher)

	result, err := s.Search(context.Background(), " Maria ")
	require.NoError(t, err)
	if diff := cmp.Diff([]ssotica.Installment{maria2}, result); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []string{" Maria "}, searcher.queries)

	require.Equal(t, map[string]int64{
		report_search_rows:    4,
		report_search_results: 1,
	}, countReports(tel))
}

func TestSearchReportsDroppedRows(t *testing.T) {
	noAmount := installment("Maria Souza", 1, 2)
	noAmount.AmountText = ""
	searcher := &fakeSearcher{
		page: renderListing([]ssotica.Installment{installment("Maria Silva", 1, 3), noAmount}),
	}
	s, tel := newTestService(t, searcher)

	result, err := s.Search(context.Background(), "maria")
	require.NoError(t, err)
	require.Len(t, result, 1)

	require.Equal(t, map[string]int64{
		report_search_rows:    2,
		report_search_dropped: 1,
		report_search_results: 1,
	}, countReports(tel))
	require.Len(t, tel.Reports(telemetry.KindWarning), 1)
}

func countReports(tel *telemetry.RecorderAPI) map[string]int64 {
	out := map[string]int64{}
	for _, report := range tel.Reports(telemetry.KindCount) {
		out[report.Id] += report.Count
	}
	return out
}

func TestSearchNoResults(t *testing.T) {
	searcher := &fakeSearcher{
		page: renderListing([]ssotica.Installment{
			installment("Marta Silva", 1, 2),
			installment("Maria Silva", 9, 10),
			installment("Zeca Andrade", 1, 1),
		}),
	}
	s, _ := newTestService(t, searcher)

	result, err := s.SearchDetailed(context.Background(), "Mariana")
	require.NoError(t, err)
	require.Empty(t, result.Installments)
	require.NotNil(t, result.Installments)
	require.Contains(t, result.Suggestions, "maria silva")
	require.NotContains(t, result.Suggestions, "zeca andrade")
}

func TestSearchLoginFailure(t *testing.T) {
	loginErr := &ssotica.Error{Kind: ssotica.KindInvalidCredentials, Message: "rejected"}
	searcher := &fakeSearcher{loginErr: loginErr}
	s, _ := newTestService(t, searcher)

	_, err := s.Search(context.Background(), "Maria")
	require.ErrorIs(t, err, ssotica.ErrSearch)
	require.ErrorIs(t, err, ssotica.ErrInvalidCredentials)
	require.Equal(t, ssotica.KindInvalidCredentials, ssotica.KindOf(err))

	var inner *ssotica.Error
	require.True(t, errors.As(err, &inner))

	_, queries := searcher.Calls()
	require.Equal(t, 0, queries)
}

func TestSearchQueryFailure(t *testing.T) {
	searcher := &fakeSearcher{queryErr: []error{fmt.Errorf("connection reset")}}
	s, tel := newTestService(t, searcher)

	_, err := s.Search(context.Background(), "Maria")
	require.ErrorIs(t, err, ssotica.ErrSearch)
	require.Equal(t, ssotica.KindSearch, ssotica.KindOf(err))
	require.NotEmpty(t, tel.Reports(telemetry.KindWarning))
}

func TestSearchRetriesExpiredSession(t *testing.T) {
	searcher := &fakeSearcher{
		page:     renderListing([]ssotica.Installment{installment("Maria Silva", 1, 3)}),
		queryErr: []error{fmt.Errorf("query: %w", ssotica.ErrSessionExpired)},
	}
	s, _ := newTestService(t, searcher)

	result, err := s.Search(context.Background(), "maria")
	require.NoError(t, err)
	require.Len(t, result, 1)

	logins, queries := searcher.Calls()
	require.Equal(t, 2, logins)
	require.Equal(t, 2, queries)
}

func TestSearchGivesUpAfterSecondExpiry(t *testing.T) {
	expired := fmt.Errorf("query: %w", ssotica.ErrSessionExpired)
	searcher := &fakeSearcher{queryErr: []error{expired, expired}}
	s, _ := newTestService(t, searcher)

	_, err := s.Search(context.Background(), "maria")
	require.ErrorIs(t, err, ssotica.ErrSearch)
	require.ErrorIs(t, err, ssotica.ErrSessionExpired)

	_, queries := searcher.Calls()
	require.Equal(t, 2, queries)
}

func TestSearchCache(t *testing.T) {
	searcher := &fakeSearcher{
		page: renderListing([]ssotica.Installment{installment("Maria Silva", 1, 3)}),
	}
	s, _ := newTestService(t, searcher, WithCache(8, time.Minute))

	first, err := s.SearchDetailed(context.Background(), "Maria")
	require.NoError(t, err)
	require.False(t, first.Cached)

	first.Installments[0].CustomerName = "mutated"

	second, err := s.SearchDetailed(context.Background(), "Maria")
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, "Maria Silva", second.Installments[0].CustomerName)

	_, queries := searcher.Calls()
	require.Equal(t, 1, queries)

	// a differently typed name is a different remote search
	third, err := s.SearchDetailed(context.Background(), "  MARIA")
	require.NoError(t, err)
	require.False(t, third.Cached)
	require.Len(t, third.Installments, 1)
	require.Equal(t, []string{"Maria", "  MARIA"}, searcher.queries)
}

func TestSearchLog(t *testing.T) {
	database, err := migrations.OpenAndMigrateDB(db.Schema, configutil.Libsql{File: ":memory:"})
	require.NoError(t, err)
	defer database.Close()
	qry := db.New(database)

	searcher := &fakeSearcher{
		page:     renderListing([]ssotica.Installment{installment("Maria Silva", 1, 3)}),
		queryErr: []error{nil, fmt.Errorf("timeout")},
	}
	s, _ := newTestService(t, searcher, WithSearchLog(qry))

	_, err = s.Search(context.Background(), "Maria")
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "Ana")
	require.Error(t, err)

	rows, err := s.RecentSearches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]db.SearchLog{}
	for _, row := range rows {
		byName[row.NormalizedName] = row
	}
	require.Equal(t, int64(1), byName["maria"].ResultCount)
	require.False(t, byName["maria"].ErrorKind.Valid)
	require.Equal(t, fixedTime.Instant.Unix(), byName["maria"].SearchedAt)
	require.Equal(t, string(ssotica.KindSearch), byName["ana"].ErrorKind.String)

	// names that produced results become suggestion candidates
	searcher.page = renderListing(nil)
	result, err := s.SearchDetailed(context.Background(), "mari")
	require.NoError(t, err)
	require.Equal(t, []string{"maria"}, result.Suggestions)

	require.NoError(t, s.PruneSearchLog(context.Background(), time.Hour))
	rows, err = s.RecentSearches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, s.PruneSearchLog(context.Background(), -time.Hour))
	rows, err = s.RecentSearches(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestSuggest(t *testing.T) {
	candidates := []string{"Maria Silva", "MARIA SILVA", "Mario Souza", "Zeca", "", "maria"}

	suggestions := Suggest("Maria", candidates)
	require.Equal(t, []string{"maria silva", "mario souza"}, suggestions)
	require.Empty(t, Suggest("  ", candidates))
	require.Empty(t, Suggest("maria", nil))
}
