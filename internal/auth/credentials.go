package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials are a username and password pair.
type Credentials struct {
	Username string
	Password string
}

// Source supplies credentials for the given 1-based attempt.
type Source interface {
	Credentials(ctx context.Context, attempt int) (Credentials, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, attempt int) (Credentials, error)

func (f SourceFunc) Credentials(ctx context.Context, attempt int) (Credentials, error) {
	return f(ctx, attempt)
}

// Prompter asks for credentials on a terminal. The username is echoed; the
// password is read without echo. One buffered reader serves every prompt so
// input typed ahead carries over to the next attempt.
type Prompter struct {
	In  *os.File
	Out io.Writer

	lines *bufio.Reader
}

// NewPrompter prompts on stdin and stderr.
func NewPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr}
}

// Interactive reports whether the prompter is attached to a terminal.
func (p *Prompter) Interactive() bool {
	return p != nil && p.In != nil && term.IsTerminal(int(p.In.Fd()))
}

func (p *Prompter) Credentials(ctx context.Context, attempt int) (Credentials, error) {
	if !p.Interactive() {
		return Credentials{}, errors.New("credentials are not configured and stdin is not a terminal")
	}
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	if attempt > 1 {
		fmt.Fprintln(p.Out, "Wrong username or password. Please try again.")
	}
	fmt.Fprint(p.Out, "Username: ")
	line, err := p.readLine()
	if err != nil {
		return Credentials{}, fmt.Errorf("read username: %w", err)
	}
	fmt.Fprint(p.Out, "Password: ")
	secret, err := p.readSecret()
	fmt.Fprintln(p.Out)
	if err != nil {
		return Credentials{}, fmt.Errorf("read password: %w", err)
	}
	return Credentials{
		Username: strings.ToLower(strings.TrimSpace(line)),
		Password: strings.TrimSpace(secret),
	}, nil
}

func (p *Prompter) reader() *bufio.Reader {
	if p.lines == nil {
		p.lines = bufio.NewReader(p.In)
	}
	return p.lines
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

// readSecret reads the password without echo unless it was already typed
// ahead and sits in the line buffer.
func (p *Prompter) readSecret() (string, error) {
	if p.reader().Buffered() > 0 {
		return p.readLine()
	}
	secret, err := term.ReadPassword(int(p.In.Fd()))
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Configured returns a source that offers the configured credentials on the
// first attempt and defers to fallback afterwards, or from the start when no
// credentials are configured. A nil fallback ends the login after the
// configured credentials are rejected.
func Configured(username, password string, fallback Source) Source {
	return SourceFunc(func(ctx context.Context, attempt int) (Credentials, error) {
		if attempt == 1 && username != "" && password != "" {
			return Credentials{Username: username, Password: password}, nil
		}
		if fallback == nil {
			return Credentials{}, errors.New("configured credentials were rejected")
		}
		// Attempt numbers restart for the fallback when it takes over after a
		// rejected configured login.
		if username != "" && password != "" {
			attempt--
		}
		return fallback.Credentials(ctx, attempt)
	})
}
