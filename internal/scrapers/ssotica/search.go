package ssotica

import (
	"context"
	"fmt"
	"net/url"
)

// fixed filters of the search form
const (
	orderByDueDate      = "VENCIMENTO"
	orderAscending      = "asc"
	searchByNameOrAlias = "nome_apelido"
	statusOpenPending   = "AP"
)

func (c *Client) searchPath() string {
	return fmt.Sprintf("/financeiro/contas-a-receber/%s/listar", url.PathEscape(c.tenant))
}

func (c *Client) searchForm(token, rawName string) url.Values {
	form := url.Values{}
	form.Set(tokenFormField, token)
	form.Set("clearFilter", "0")
	form.Set("orderBy_Parcelamento", orderByDueDate)
	form.Set("ascDesc_Parcelamento", orderAscending)
	form.Set("empresa_Parcelamento", c.tenant)
	form.Set("nossoNumero_Parcelamento", "")
	form.Set("codigoDeBarras_Parcelamento", "")
	form.Set("searchTermSelect_Parcelamento", searchByNameOrAlias)
	form.Set("searchTerm_Parcelamento", rawName)
	form.Add("situacao_Parcelamento[]", statusOpenPending)
	form.Set("tipoPeriodo_Parcelamento", "")
	return form
}

// QueryInstallments posts the accounts-receivable search for rawName and
// returns the html of the results page. The session must be authenticated.
func (c *Client) QueryInstallments(ctx context.Context, rawName string) ([]byte, error) {
	current := c.currentSession()
	if !current.authenticated {
		return nil, fmt.Errorf("query installments: not authenticated")
	}

	req := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(c.searchForm(current.token, rawName))
	if current.tokenFromCookie {
		req.SetHeader(tokenHeaderName, current.token)
	}

	res, err := req.Post(c.searchPath())
	if err != nil {
		c.tel.ReportBroken(report_client_query_installment, fmt.Errorf("fetch: %w", err))
		return nil, fmt.Errorf("query installments: %w", err)
	}
	if !res.IsSuccess() {
		c.tel.ReportBroken(report_client_query_installment, fmt.Errorf("status: %s", res.Status()))
		return nil, fmt.Errorf("query installments: unexpected status %d", res.StatusCode())
	}
	if isLoginPath(finalUrl(res)) {
		c.tel.ReportWarning(report_client_query_installment, "redirected to login, session expired")
		c.Invalidate()
		return nil, fmt.Errorf("query installments: %w", ErrSessionExpired)
	}

	return res.Body(), nil
}
