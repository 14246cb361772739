package ssotica

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	login := newError(KindInvalidCredentials, nil, "rejected")
	search := NewSearchError(login, "search for '%s'", "Maria")

	require.ErrorIs(t, search, ErrSearch)
	require.ErrorIs(t, search, ErrInvalidCredentials)
	require.NotErrorIs(t, search, ErrRequestFailed)
	require.Equal(t, KindInvalidCredentials, KindOf(search))
	require.Equal(t, "SearchError: search for 'Maria': InvalidCredentials: rejected", search.Error())

	bare := NewSearchError(fmt.Errorf("boom"), "search")
	require.Equal(t, KindSearch, KindOf(bare))

	wrapped := fmt.Errorf("handler: %w", NewInvalidInputError("empty name"))
	require.Equal(t, KindInvalidInput, KindOf(wrapped))

	require.Equal(t, Kind(""), KindOf(errors.New("other")))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestParseTokenSource(t *testing.T) {
	source, err := ParseTokenSource("")
	require.NoError(t, err)
	require.Equal(t, TokenFromFormField, source)

	source, err = ParseTokenSource("cookie")
	require.NoError(t, err)
	require.Equal(t, TokenFromCookie, source)

	_, err = ParseTokenSource("header")
	require.Error(t, err)
}

func TestLoginRejected(t *testing.T) {
	table := []struct {
		path     string
		body     string
		rejected bool
	}{
		{path: "/login", rejected: true},
		{path: "/login/", rejected: true},
		{path: "/dashboard", body: "Usuário ou senha inválidos", rejected: true},
		{path: "/dashboard", body: "LOGIN INVÁLIDO", rejected: true},
		{path: "/dashboard", body: "These credentials do not match our records.", rejected: true},
		{path: "/dashboard", body: "Bem vindo"},
		{path: "/financeiro/contas-a-receber"},
	}

	for _, row := range table {
		link := &url.URL{Path: row.path}
		require.Equal(t, row.rejected, loginRejected(link, []byte(row.body)), row.path+" "+row.body)
	}
}
