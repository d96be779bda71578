package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"panograb/internal/auth"
	"panograb/internal/services"
)

type fakeLoginPage struct {
	validUser    string
	validPass    string
	fields       map[string]string
	loggedIn     bool
	errorShown   bool
	clicks       []string
	reloads      int
	missingClick int
}

func newFakeLoginPage(user, pass string) *fakeLoginPage {
	return &fakeLoginPage{validUser: user, validPass: pass, fields: map[string]string{}}
}

func (p *fakeLoginPage) Navigate(context.Context, string) error { return nil }

func (p *fakeLoginPage) Reload(context.Context) error {
	p.reloads++
	p.errorShown = false
	return nil
}

func (p *fakeLoginPage) Click(_ context.Context, selector string) error {
	if p.missingClick > 0 {
		p.missingClick--
		return errors.New("element did not appear")
	}
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakeLoginPage) Fill(_ context.Context, selector, value string) error {
	p.fields[selector] = value
	return nil
}

func (p *fakeLoginPage) Submit(context.Context, string) error {
	if p.fields[auth.UsernameInputSelector] == p.validUser && p.fields[auth.PasswordInputSelector] == p.validPass {
		p.loggedIn = true
		return nil
	}
	p.errorShown = true
	return nil
}

func (p *fakeLoginPage) Exists(_ context.Context, selector string) (bool, error) {
	return selector == auth.LoginErrorSelector && p.errorShown, nil
}

func (p *fakeLoginPage) Sleep(context.Context, time.Duration) error { return nil }

type scriptedSource struct {
	creds    []auth.Credentials
	attempts []int
}

func (s *scriptedSource) Credentials(_ context.Context, attempt int) (auth.Credentials, error) {
	s.attempts = append(s.attempts, attempt)
	if attempt > len(s.creds) {
		return auth.Credentials{}, errors.New("no more credentials")
	}
	return s.creds[attempt-1], nil
}

func newAuthenticator(source auth.Source, maxAttempts int) *auth.Authenticator {
	return &auth.Authenticator{
		ListURL:     "https://portal/List.aspx#",
		Source:      source,
		MaxAttempts: maxAttempts,
		Retry:       services.RetryPolicy{Attempts: 3},
	}
}

func TestLoginSucceedsFirstAttempt(t *testing.T) {
	page := newFakeLoginPage("s123", "secret")
	source := &scriptedSource{creds: []auth.Credentials{{Username: "s123", Password: "secret"}}}
	if err := newAuthenticator(source, 3).Login(context.Background(), page); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !page.loggedIn {
		t.Fatal("expected page to be logged in")
	}
	if len(page.clicks) != 2 || page.clicks[0] != auth.LoginButtonSelector || page.clicks[1] != auth.ExternalLoginSelector {
		t.Fatalf("unexpected clicks %v", page.clicks)
	}
}

func TestLoginRetriesAfterRejection(t *testing.T) {
	page := newFakeLoginPage("s123", "secret")
	source := &scriptedSource{creds: []auth.Credentials{
		{Username: "s123", Password: "wrong"},
		{Username: "s123", Password: "secret"},
	}}
	if err := newAuthenticator(source, 3).Login(context.Background(), page); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if page.reloads != 1 {
		t.Fatalf("expected one reload after rejection, got %d", page.reloads)
	}
	if len(source.attempts) != 2 || source.attempts[1] != 2 {
		t.Fatalf("unexpected attempts %v", source.attempts)
	}
}

func TestLoginStopsAtAttemptCap(t *testing.T) {
	page := newFakeLoginPage("s123", "secret")
	bad := auth.Credentials{Username: "s123", Password: "wrong"}
	source := &scriptedSource{creds: []auth.Credentials{bad, bad, bad}}
	err := newAuthenticator(source, 2).Login(context.Background(), page)
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if len(source.attempts) != 2 {
		t.Fatalf("expected 2 credential requests, got %d", len(source.attempts))
	}
}

func TestLoginRetriesMissingLoginButton(t *testing.T) {
	page := newFakeLoginPage("s123", "secret")
	page.missingClick = 1
	source := &scriptedSource{creds: []auth.Credentials{{Username: "s123", Password: "secret"}}}
	if err := newAuthenticator(source, 3).Login(context.Background(), page); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestLoginNavigationErrorWhenFormNeverAppears(t *testing.T) {
	page := newFakeLoginPage("s123", "secret")
	page.missingClick = 10
	source := &scriptedSource{creds: []auth.Credentials{{Username: "s123", Password: "secret"}}}
	err := newAuthenticator(source, 3).Login(context.Background(), page)
	if !errors.Is(err, services.ErrNavigation) {
		t.Fatalf("expected ErrNavigation, got %v", err)
	}
}

func TestConfiguredSourceFallsBack(t *testing.T) {
	fallback := &scriptedSource{creds: []auth.Credentials{{Username: "typed", Password: "pw"}}}
	source := auth.Configured("cfg", "cfgpw", fallback)

	first, err := source.Credentials(context.Background(), 1)
	if err != nil || first.Username != "cfg" {
		t.Fatalf("unexpected first credentials %+v err=%v", first, err)
	}
	second, err := source.Credentials(context.Background(), 2)
	if err != nil || second.Username != "typed" {
		t.Fatalf("unexpected fallback credentials %+v err=%v", second, err)
	}
	if fallback.attempts[0] != 1 {
		t.Fatalf("fallback should see its own first attempt, got %v", fallback.attempts)
	}
}

func TestConfiguredSourceWithoutFallback(t *testing.T) {
	source := auth.Configured("cfg", "cfgpw", nil)
	if _, err := source.Credentials(context.Background(), 2); err == nil {
		t.Fatal("expected error once configured credentials are rejected")
	}
}
