package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"panograb/internal/logging"
	"panograb/internal/services"
)

// Format is an output container.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

const protocolWhitelist = "file,http,https,tcp,tls,crypto"

// ParseFormat accepts "mp4", "mp3", and the same with a leading dot.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")) {
	case FormatMP4:
		return FormatMP4, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("unsupported download type %q (want mp4 or mp3)", value)
	}
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps ffmpeg invocations.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs an ffmpeg client. A zero timeout means no limit.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// OutputPath returns where Transcode places the media for manifestPath.
func OutputPath(manifestPath string, format Format) string {
	return strings.TrimSuffix(manifestPath, filepath.Ext(manifestPath)) + "." + string(format)
}

// Args builds the ffmpeg argument list reading manifestPath into outPath.
func Args(manifestPath, outPath string, format Format) ([]string, error) {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-protocol_whitelist", protocolWhitelist,
		"-i", manifestPath,
	}
	switch format {
	case FormatMP4:
		args = append(args, "-c", "copy", "-bsf:a", "aac_adtstoasc")
	case FormatMP3:
		args = append(args, "-q:a", "2")
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return append(args, outPath), nil
}

// Transcode converts manifestPath and returns the media path.
func (c *Client) Transcode(ctx context.Context, manifestPath string, format Format) (string, error) {
	finalPath := OutputPath(manifestPath, format)
	dir := filepath.Dir(finalPath)
	partialPath := filepath.Join(dir, "."+strings.TrimSuffix(filepath.Base(finalPath), "."+string(format))+".partial."+string(format))

	args, err := Args(manifestPath, partialPath, format)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcode", "args", "", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tail := newTail(20)
	started := time.Now()
	c.logger.Debug("ffmpeg started",
		logging.String("manifest", filepath.Base(manifestPath)),
		logging.String("format", string(format)),
	)
	if err := c.exec.Run(runCtx, c.binary, args, tail.add); err != nil {
		_ = os.Remove(partialPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := strings.Join(tail.lines(), "; ")
		return "", services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", detail, err)
	}

	if _, err := os.Stat(partialPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "no output produced", err)
	}
	if err := os.Rename(partialPath, finalPath); err != nil {
		return "", fmt.Errorf("rename transcoded file: %w", err)
	}
	c.logger.Info("media written",
		logging.String("path", finalPath),
		slog.Duration("elapsed", time.Since(started).Round(time.Second)),
	)
	return finalPath, nil
}

// tail keeps the last n output lines for error reports.
type tail struct {
	mu   sync.Mutex
	max  int
	data []string
}

func newTail(n int) *tail { return &tail{max: n} }

func (t *tail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = append(t.data, line)
	if len(t.data) > t.max {
		t.data = t.data[len(t.data)-t.max:]
	}
}

func (t *tail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.data...)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
