package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ssotica-backend/internal/assert"
	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/internal/db"
	"ssotica-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	report_request  = "http.request"
	report_response = "http.write-response"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// InstallmentSearcher is what the transport needs from the search service.
type InstallmentSearcher interface {
	SearchDetailed(ctx context.Context, rawName string) (service.SearchResult, error)
	RecentSearches(ctx context.Context, limit int) ([]db.SearchLog, error)
}

type Server struct {
	search  InstallmentSearcher
	tel     telemetry.API
	timeout time.Duration
}

// NewServer creates the REST transport, timeout bounds every request and
// defaults to a minute.
func NewServer(search InstallmentSearcher, tel telemetry.API, timeout time.Duration) *Server {
	assert.NotNil(search, "installment searcher")
	assert.NotNil(tel, "telemetry")
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Server{
		search:  search,
		tel:     telemetry.NewScopedAPI("http", tel),
		timeout: timeout,
	}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestId)
	r.Use(s.logRequests)
	r.Use(allowCors)

	r.Get("/healthz", s.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Post("/consultar", s.consultar)
		r.Get("/consultar-parcelas", s.consultarParcelas)
		r.Get("/buscas", s.buscas)
	})
	return r
}

type consultarRequest struct {
	NomeCliente string `json:"nomeCliente"`
}

type searchResponse struct {
	Success   bool     `json:"success"`
	Dados     any      `json:"dados"`
	Sugestoes []string `json:"sugestoes,omitempty"`
	FromCache bool     `json:"cache,omitempty"`
	RequestId string   `json:"requestId,omitempty"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestId string `json:"requestId,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) consultar(w http.ResponseWriter, r *http.Request) {
	var req consultarRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req)
	if err != nil {
		s.writeJson(w, http.StatusBadRequest, errorResponse{
			Message:   "Corpo da requisição inválido.",
			Error:     "InvalidInputError",
			Details:   err.Error(),
			RequestId: requestIdFrom(r.Context()),
		})
		return
	}
	s.runSearch(w, r, req.NomeCliente, "O campo nomeCliente é obrigatório.")
}

func (s *Server) consultarParcelas(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, r.URL.Query().Get("nome"), `O parâmetro "nome" é obrigatório.`)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, name, emptyMessage string) {
	result, err := s.search.SearchDetailed(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err, emptyMessage)
		return
	}

	s.writeJson(w, http.StatusOK, searchResponse{
		Success:   true,
		Dados:     result.Installments,
		Sugestoes: result.Suggestions,
		FromCache: result.Cached,
		RequestId: requestIdFrom(r.Context()),
	})
}

type searchLogRow struct {
	Nome       string `json:"nome"`
	Termo      string `json:"termo"`
	Resultados int64  `json:"resultados"`
	Erro       string `json:"erro,omitempty"`
	Cache      bool   `json:"cache"`
	DuracaoMs  int64  `json:"duracaoMs"`
	Em         string `json:"em"`
}

func (s *Server) buscas(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if value := r.URL.Query().Get("limite"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeJson(w, http.StatusBadRequest, errorResponse{
				Message:   `O parâmetro "limite" deve ser um número positivo.`,
				Error:     "InvalidInputError",
				RequestId: requestIdFrom(r.Context()),
			})
			return
		}
		limit = min(parsed, maxRecentLimit)
	}

	rows, err := s.search.RecentSearches(r.Context(), limit)
	if err != nil {
		s.writeJson(w, http.StatusInternalServerError, errorResponse{
			Message:   "Erro ao consultar o histórico de buscas.",
			Details:   err.Error(),
			RequestId: requestIdFrom(r.Context()),
		})
		return
	}

	out := make([]searchLogRow, len(rows))
	for i, row := range rows {
		out[i] = searchLogRow{
			Nome:       row.NormalizedName,
			Termo:      row.RawName,
			Resultados: row.ResultCount,
			Erro:       row.ErrorKind.String,
			Cache:      row.Cached != 0,
			DuracaoMs:  row.DurationMs,
			Em:         time.Unix(row.SearchedAt, 0).UTC().Format(time.RFC3339),
		}
	}
	s.writeJson(w, http.StatusOK, searchResponse{
		Success:   true,
		Dados:     out,
		RequestId: requestIdFrom(r.Context()),
	})
}

func (s *Server) writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		s.tel.ReportBroken(report_response, err)
	}
}
