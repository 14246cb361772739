package ssotica

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenFromCookiesAtSiteRoot(t *testing.T) {
	for _, base := range []string{"https://app.ssotica.test", "https://app.ssotica.test/"} {
		baseUrl, err := url.Parse(base)
		require.NoError(t, err)

		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		jar.SetCookies(baseUrl.ResolveReference(&url.URL{Path: "/login"}), []*http.Cookie{
			{Name: tokenCookieName, Value: "tok%2Fen", Path: "/"},
		})

		link := loginPageUrl(nil, baseUrl)
		require.Equal(t, "/login", link.Path, base)
		require.Equal(t, "tok/en", tokenFromCookies(jar, link), base)

		token, fromCookie := findToken(TokenFromFormField, []byte("<html></html>"), jar, link)
		require.Equal(t, "tok/en", token, base)
		require.True(t, fromCookie, base)
	}
}
