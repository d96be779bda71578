package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"panograb/internal/logging"
	"panograb/internal/services"
)

// Selectors on the portal and identity provider login pages.
const (
	LoginButtonSelector   = "#loginButton"
	ExternalLoginSelector = "#loginControl_externalLoginButton"
	UsernameInputSelector = "#userNameInput"
	PasswordInputSelector = "#passwordInput"
	LoginErrorSelector    = "#error"
)

// Page is the browser surface the login flow drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Submit(ctx context.Context, selector string) error
	Exists(ctx context.Context, selector string) (bool, error)
	Sleep(ctx context.Context, d time.Duration) error
}

// Timings are the pauses the login pages need between steps.
type Timings struct {
	AfterClick  time.Duration
	FormLoad    time.Duration
	AfterSubmit time.Duration
}

// DefaultTimings match the portal's redirect behaviour.
var DefaultTimings = Timings{
	AfterClick:  500 * time.Millisecond,
	FormLoad:    2 * time.Second,
	AfterSubmit: 500 * time.Millisecond,
}

// Authenticator logs a page into the portal.
type Authenticator struct {
	ListURL     string
	Source      Source
	MaxAttempts int
	Retry       services.RetryPolicy
	Timings     Timings
	Logger      *slog.Logger
}

// Login opens the listing page and submits credentials until the portal
// accepts them or the attempt cap is reached.
func (a *Authenticator) Login(ctx context.Context, page Page) error {
	logger := a.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if a.Source == nil {
		return services.Wrap(services.ErrConfiguration, "auth", "login", "no credential source", nil)
	}
	if err := page.Navigate(ctx, a.ListURL); err != nil {
		return services.Wrap(services.ErrNavigation, "auth", "open portal", a.ListURL, err)
	}

	machine := NewMachine(a.MaxAttempts)
	for {
		switch machine.State() {
		case AwaitingCredentials:
			if !machine.CanSubmit() {
				return services.Wrap(services.ErrAuthentication, "auth", "login", "credentials rejected too many times", nil)
			}
			creds, err := a.Source.Credentials(ctx, machine.Submissions()+1)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return services.Wrap(services.ErrAuthentication, "auth", "credentials", "", err)
			}
			if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
				return services.Wrap(services.ErrAuthentication, "auth", "credentials", "username and password are required", nil)
			}
			if err := a.openForm(ctx, page, logger); err != nil {
				return err
			}
			if err := a.submit(ctx, page, creds); err != nil {
				return err
			}
			if err := machine.Fire(EventSubmit); err != nil {
				return services.Wrap(services.ErrAuthentication, "auth", "login", "", err)
			}
		case Submitted:
			if err := page.Sleep(ctx, a.Timings.AfterSubmit); err != nil {
				return err
			}
			rejected, err := page.Exists(ctx, LoginErrorSelector)
			if err != nil {
				return services.Wrap(services.ErrNavigation, "auth", "read verdict", "", err)
			}
			ev := EventAccepted
			if rejected {
				ev = EventRejected
			}
			if err := machine.Fire(ev); err != nil {
				return services.Wrap(services.ErrAuthentication, "auth", "login", "", err)
			}
		case Rejected:
			logger.Warn("login rejected",
				logging.Int("attempt", machine.Submissions()),
				logging.Int("max_attempts", a.MaxAttempts),
			)
			if err := page.Reload(ctx); err != nil {
				return services.Wrap(services.ErrNavigation, "auth", "reload", "", err)
			}
			if err := machine.Fire(EventRetry); err != nil {
				return services.Wrap(services.ErrAuthentication, "auth", "login", "", err)
			}
		case Authenticated:
			logger.Info("logged in", logging.Int("attempts", machine.Submissions()))
			return nil
		}
	}
}

// openForm walks from the portal's login button to the identity provider
// form, retrying when the buttons have not rendered yet.
func (a *Authenticator) openForm(ctx context.Context, page Page, logger *slog.Logger) error {
	err := services.Retry(ctx, a.Retry, logger, func(ctx context.Context) error {
		if err := page.Click(ctx, LoginButtonSelector); err != nil {
			return err
		}
		if err := page.Sleep(ctx, a.Timings.AfterClick); err != nil {
			return err
		}
		if err := page.Click(ctx, ExternalLoginSelector); err != nil {
			return err
		}
		return page.Sleep(ctx, a.Timings.FormLoad)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrNavigation, "auth", "open login form", "", err)
	}
	return nil
}

func (a *Authenticator) submit(ctx context.Context, page Page, creds Credentials) error {
	if err := page.Fill(ctx, UsernameInputSelector, creds.Username); err != nil {
		return services.Wrap(services.ErrNavigation, "auth", "fill username", "", err)
	}
	if err := page.Fill(ctx, PasswordInputSelector, creds.Password); err != nil {
		return services.Wrap(services.ErrNavigation, "auth", "fill password", "", err)
	}
	if err := page.Submit(ctx, PasswordInputSelector); err != nil {
		return services.Wrap(services.ErrNavigation, "auth", "submit", "", err)
	}
	return nil
}
