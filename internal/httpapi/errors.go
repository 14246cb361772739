package httpapi

import (
	"net/http"

	"ssotica-backend/internal/scrapers/ssotica"
)

// statusOf maps an error kind to the status code the client sees. A rejected
// SSÓtica login is our misconfiguration, not the caller's, so it is never a 401.
func statusOf(kind ssotica.Kind) int {
	switch kind {
	case ssotica.KindInvalidInput:
		return http.StatusBadRequest
	case ssotica.KindRequestFailed, ssotica.KindCsrfTokenMissing, ssotica.KindSearch:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func messageOf(status int) string {
	switch status {
	case http.StatusBadGateway:
		return "Falha ao consultar o sistema ssotica."
	}
	return "Erro ao consultar as parcelas"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, invalidInputMessage string) {
	kind := ssotica.KindOf(err)
	status := statusOf(kind)

	res := errorResponse{
		Message:   messageOf(status),
		Error:     string(kind),
		Details:   err.Error(),
		RequestId: requestIdFrom(r.Context()),
	}
	if status == http.StatusBadRequest {
		res.Message = invalidInputMessage
	} else {
		s.tel.ReportWarning(report_request, err, r.URL.Path, res.RequestId)
	}
	s.writeJson(w, status, res)
}
