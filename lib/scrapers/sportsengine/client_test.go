package sportsengine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
	<form action="/user/sign_in" method="post">
		<input type="hidden" name="authenticity_token" value="csrf123"/>
		<input type="email" name="user[login]"/>
		<input type="password" name="user[password]"/>
		<button type="submit">Sign In</button>
	</form>
</body></html>`

const dashboardPage = `<html><body>
	<a href="/user/sign_out">Sign Out</a>
	<p>Welcome back!</p>
</body></html>`

const badLoginPage = `<html><body>
	<div class="alert-danger">Invalid email or password.</div>
	<form action="/user/sign_in" method="post">
		<input type="email" name="user[login]"/>
		<input type="password" name="user[password]"/>
	</form>
</body></html>`

func newFakeSite(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/sign_in", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("POST /user/sign_in", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "csrf123", r.Form.Get("authenticity_token"))
		if r.Form.Get("user[password]") != "hunter2" {
			fmt.Fprint(w, badLoginPage)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "se_session", Value: "tok123", Path: "/"})
		fmt.Fprint(w, dashboardPage)
	})
	mux.HandleFunc("GET /user/organizations", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("se_session")
		if err != nil || cookie.Value != "tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, organizationsPage)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAuthenticateAndListOrganizations(t *testing.T) {
	site := newFakeSite(t)
	opts := ClientOptions{BaseUrl: site.URL}
	ctx := context.Background()

	creds, err := Authenticate(ctx, opts, "coach@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "coach@example.com", creds.Email)
	require.NotEmpty(t, creds.Cookies)

	orgs, err := ListOrganizations(ctx, opts, creds)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	require.Equal(t, "eagles-youth", orgs[0].Id)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	site := newFakeSite(t)

	_, err := Authenticate(context.Background(), ClientOptions{BaseUrl: site.URL}, "coach@example.com", "wrong")
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	// the page's own error text is surfaced
	require.Contains(t, authErr.Message, "Invalid email or password")
}

func TestAuthenticateAgainstBrokenPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>scheduled maintenance</p></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := Authenticate(context.Background(), ClientOptions{BaseUrl: server.URL}, "a@b.c", "pw")
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}
