package ssotica

import (
	"net/url"
	"regexp"
	"strings"
)

// phrases SSÓtica shows on the login page after a rejected attempt
var loginRejectedPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)usu.rio ou senha inv.lidos`),
	regexp.MustCompile(`(?i)login inv.lido`),
	regexp.MustCompile(`(?i)credenciais inv.lidas`),
	regexp.MustCompile(`(?i)these credentials do not match`),
}

func isLoginPath(link *url.URL) bool {
	if link == nil {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(link.Path, "/"), loginPath)
}

// loginRejected decides whether the response to the login POST means the
// credentials were refused. This is a heuristic over the current markup of
// SSÓtica: we either got bounced back to the login page or the page tells us so.
func loginRejected(finalUrl *url.URL, body []byte) bool {
	if isLoginPath(finalUrl) {
		return true
	}
	for _, phrase := range loginRejectedPhrases {
		if phrase.Match(body) {
			return true
		}
	}
	return false
}
