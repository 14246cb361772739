package ssotica

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"ssotica-backend/internal/assert"
	"ssotica-backend/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	report_client_login             = "client.login"
	report_client_query_installment = "client.query-installments"
)

const (
	DefaultBaseUrl = "https://app.ssotica.com.br"
	DefaultTenant  = "LwlRRM"
	DefaultTimeout = time.Second * 20

	loginPath = "/login"
)

type ClientOptions struct {
	BaseUrl  string
	Tenant   string
	Username string
	Password string

	TokenSource TokenSource
	// LoginField is the name of the form field that carries the username,
	// it defaults to "login" for form-field tokens and "email" for cookie tokens.
	LoginField string

	// Timeout applies to each outbound request, it defaults to 20 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits outbound requests, it defaults to 2.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with cloudflare-bp-go.
	CloudflareBypass bool
	// Output receives a dump of every http exchange when not nil.
	Output telemetry.MessageOutput
}

// session is the authenticated state kept between requests.
type session struct {
	jar             *cookiejar.Jar
	token           string
	tokenFromCookie bool
	authenticated   bool
}

// Client owns a single SSÓtica session, it is safe for concurrent use.
type Client struct {
	baseUrl    *url.URL
	http       *resty.Client
	tenant     string
	username   string
	password   string
	source     TokenSource
	loginField string

	tel telemetry.API

	mutex   sync.Mutex
	session session
	logins  singleflight.Group
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("ssotica", tel)

	if opts.Username == "" || opts.Password == "" {
		return nil, newError(KindConfiguration, nil, "ssotica username and password are required")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Tenant == "" {
		opts.Tenant = DefaultTenant
	}
	if opts.TokenSource == "" {
		opts.TokenSource = TokenFromFormField
	}
	if opts.LoginField == "" {
		opts.LoginField = "login"
		if opts.TokenSource == TokenFromCookie {
			opts.LoginField = "email"
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, newError(KindConfiguration, err, "invalid base url '%s'", opts.BaseUrl)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)
	httpClient.SetTimeout(opts.Timeout)

	// max burst >= requests per second just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(
		httpClient, tel, opts.Output,
		"password", tokenFormField, tokenHeaderName, "cookie", "set-cookie",
	)

	return &Client{
		baseUrl:    baseUrl,
		http:       httpClient,
		tenant:     opts.Tenant,
		username:   opts.Username,
		password:   opts.Password,
		source:     opts.TokenSource,
		loginField: opts.LoginField,
		tel:        tel,
		session:    session{jar: jar},
	}, nil
}

// Authenticated reports whether the client currently holds a logged in session.
func (c *Client) Authenticated() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session.authenticated
}

// Invalidate drops the current session, the next EnsureAuthenticated logs in again.
func (c *Client) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.session.authenticated = false
	c.session.token = ""
	c.session.tokenFromCookie = false
}

func (c *Client) currentSession() session {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session
}

// EnsureAuthenticated logs in unless the client already holds a session. It
// makes no request at all when already authenticated, concurrent callers
// share a single login attempt.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.Authenticated() {
		return nil
	}

	result := c.logins.DoChan("login", func() (any, error) {
		if c.Authenticated() {
			return nil, nil
		}
		// the login is shared by every waiting caller so it must not be
		// aborted by the first caller going away, the per-request timeout
		// still bounds it.
		return nil, c.login(context.WithoutCancel(ctx))
	})

	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return newError(KindRequestFailed, ctx.Err(), "waiting for login")
	}
}

func (c *Client) login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return newError(KindConfiguration, nil, "ssotica username and password are required")
	}

	c.tel.ReportDebug("login started", c.baseUrl.String(), string(c.source))

	// every login starts from an empty cookie store
	jar, err := cookiejar.New(nil)
	if err != nil {
		return newError(KindRequestFailed, err, "create cookie jar")
	}
	c.http.SetCookieJar(jar)

	res, err := c.http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login page request: %w", err))
		return newError(KindRequestFailed, err, "fetch login page")
	}
	if !res.IsSuccess() {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login page status: %s", res.Status()))
		return newError(KindRequestFailed, nil, "fetch login page: unexpected status %d", res.StatusCode())
	}

	token, fromCookie := findToken(c.source, res.Body(), jar, loginPageUrl(res, c.baseUrl))
	if token == "" {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("could not find csrf token"), string(c.source))
		return newError(KindCsrfTokenMissing, nil, "csrf token not found in login page form or cookies")
	}

	req := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			tokenFormField: token,
			c.loginField:   c.username,
			"password":     c.password,
		})
	if fromCookie {
		req.SetHeader(tokenHeaderName, token)
	}
	res, err = req.Post(loginPath)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request: %w", err))
		return newError(KindRequestFailed, err, "submit login form")
	}
	if !res.IsSuccess() {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request status: %s", res.Status()))
		return newError(KindRequestFailed, nil, "submit login form: unexpected status %d", res.StatusCode())
	}

	if loginRejected(finalUrl(res), res.Body()) {
		c.tel.ReportWarning(report_client_login, "credentials rejected", c.username)
		return newError(KindInvalidCredentials, nil, "ssotica rejected the username or password")
	}

	c.mutex.Lock()
	c.session = session{
		jar:             jar,
		token:           token,
		tokenFromCookie: fromCookie,
		authenticated:   true,
	}
	c.mutex.Unlock()

	c.tel.ReportDebug("login succeeded", c.username)
	return nil
}

// loginPageUrl is the url the login page was served from, the jar only
// returns cookies whose path matches it.
func loginPageUrl(res *resty.Response, base *url.URL) *url.URL {
	if res != nil {
		if link := finalUrl(res); link != nil {
			return link
		}
	}
	return base.ResolveReference(&url.URL{Path: loginPath})
}

// finalUrl is the url of the last request made after following redirects.
func finalUrl(res *resty.Response) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL
	}
	if res.Request != nil && res.Request.RawRequest != nil {
		return res.Request.RawRequest.URL
	}
	return nil
}
