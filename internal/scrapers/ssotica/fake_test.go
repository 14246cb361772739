package ssotica

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
)

type fakeTokenMode int

const (
	fakeTokenForm fakeTokenMode = iota
	fakeTokenCookie
	fakeTokenNone
)

const (
	fakeUser     = "operador@loja.com"
	fakePassword = "senha-correta"
	fakeSession  = "fake-session"
)

// fakeSsotica imitates the parts of SSÓtica the client talks to.
type fakeSsotica struct {
	t      *testing.T
	server *httptest.Server

	tokenMode fakeTokenMode
	token     string
	// rejectWithPhrase answers a bad login with the error page instead of a
	// redirect back to /login.
	rejectWithPhrase bool
	loginPageStatus  int
	listing          []byte

	mutex       sync.Mutex
	hits        map[string]int
	searchForms []url.Values
	loginForms  []url.Values
	loginHeader []string
	sessions    map[string]bool
}

func newFakeSsotica(t *testing.T, mode fakeTokenMode) *fakeSsotica {
	listing, err := os.ReadFile("testdata/listing.html")
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeSsotica{
		t:         t,
		tokenMode: mode,
		token:     "tok/en+with=chars",
		listing:   listing,
		hits:      map[string]int{},
		sessions:  map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", f.handleLogin)
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.hit(r)
		fmt.Fprint(w, "<html><body>Bem vindo</body></html>")
	})
	mux.HandleFunc(fmt.Sprintf("/financeiro/contas-a-receber/%s/listar", DefaultTenant), f.handleSearch)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSsotica) hit(r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.hits[r.Method+" "+r.URL.Path]++
}

func (f *fakeSsotica) Hits(key string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.hits[key]
}

func (f *fakeSsotica) ExpireSessions() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sessions = map[string]bool{}
}

func (f *fakeSsotica) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.hit(r)

	switch r.Method {
	case http.MethodGet:
		if f.loginPageStatus != 0 {
			w.WriteHeader(f.loginPageStatus)
			return
		}
		field := ""
		switch f.tokenMode {
		case fakeTokenForm:
			field = fmt.Sprintf(`<input type="hidden" name="_token" value="%s">`, f.token)
		case fakeTokenCookie:
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: url.QueryEscape(f.token), Path: "/"})
		}
		fmt.Fprintf(w, `<html><body><form method="post" action="/login">%s
			<input name="login"><input name="password" type="password"></form></body></html>`, field)
	case http.MethodPost:
		err := r.ParseForm()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mutex.Lock()
		f.loginForms = append(f.loginForms, r.PostForm)
		f.loginHeader = append(f.loginHeader, r.Header.Get("X-XSRF-TOKEN"))
		f.mutex.Unlock()

		user := r.PostForm.Get("login")
		if f.tokenMode == fakeTokenCookie {
			user = r.PostForm.Get("email")
		}
		if r.PostForm.Get("_token") != f.token || user != fakeUser || r.PostForm.Get("password") != fakePassword {
			if f.rejectWithPhrase {
				fmt.Fprint(w, `<html><body><div class="alert">Usuário ou senha inválidos</div></body></html>`)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		f.mutex.Lock()
		f.sessions[fakeSession] = true
		f.mutex.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "ssotica_session", Value: fakeSession, Path: "/"})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeSsotica) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.hit(r)

	cookie, err := r.Cookie("ssotica_session")
	f.mutex.Lock()
	valid := err == nil && f.sessions[cookie.Value]
	f.mutex.Unlock()
	if !valid {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	err = r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mutex.Lock()
	f.searchForms = append(f.searchForms, r.PostForm)
	f.mutex.Unlock()

	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write(f.listing)
}
