package ssotica

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// TokenSource says where the CSRF token of the login page is read from.
type TokenSource string

const (
	// TokenFromFormField reads the hidden `_token` input of the login form.
	TokenFromFormField TokenSource = "form-field"
	// TokenFromCookie reads the XSRF-TOKEN cookie, the token is then also sent
	// back as the X-XSRF-TOKEN header.
	TokenFromCookie TokenSource = "cookie"
)

const (
	tokenFormField  = "_token"
	tokenCookieName = "XSRF-TOKEN"
	tokenHeaderName = "X-XSRF-TOKEN"
)

func ParseTokenSource(value string) (TokenSource, error) {
	switch TokenSource(value) {
	case "", TokenFromFormField:
		return TokenFromFormField, nil
	case TokenFromCookie:
		return TokenFromCookie, nil
	}
	return "", fmt.Errorf("unknown csrf token source '%s' (expected '%s' or '%s')", value, TokenFromFormField, TokenFromCookie)
}

func tokenFromFormField(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return doc.Find(fmt.Sprintf(`input[name="%s"]`, tokenFormField)).First().AttrOr("value", "")
}

func tokenFromCookies(jar http.CookieJar, link *url.URL) string {
	if jar == nil {
		return ""
	}
	for _, cookie := range jar.Cookies(link) {
		if cookie.Name != tokenCookieName {
			continue
		}
		value, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			return cookie.Value
		}
		return value
	}
	return ""
}

// findToken looks for the token with the preferred source first and then
// with the other one. fromCookie reports which mechanism produced it.
func findToken(preferred TokenSource, body []byte, jar http.CookieJar, link *url.URL) (token string, fromCookie bool) {
	sources := []TokenSource{TokenFromFormField, TokenFromCookie}
	if preferred == TokenFromCookie {
		sources = []TokenSource{TokenFromCookie, TokenFromFormField}
	}

	for _, source := range sources {
		switch source {
		case TokenFromFormField:
			token = tokenFromFormField(body)
		case TokenFromCookie:
			token = tokenFromCookies(jar, link)
		}
		if token != "" {
			return token, source == TokenFromCookie
		}
	}
	return "", false
}
