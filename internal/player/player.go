// Package player runs the external media player and talks to it over its
// JSON IPC socket. Only one handle per launcher is alive at a time.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"karolbroda.com/lyreplay/internal/config"
)

const terminateGrace = time.Second

var (
	ErrNoSource = errors.New("no source reference")
	ErrLaunch   = errors.New("media player failed to launch")
)

type LauncherConfig struct {
	// Path is the mpv binary.
	Path string
	// PrefixArgs are placed before the player flags; used to run a stand-in binary.
	PrefixArgs   []string
	EndpointDir  string
	WaitTimeout  time.Duration
	PollInterval time.Duration
	QueryTimeout time.Duration
	Logger       zerolog.Logger
}

type Launcher struct {
	path         string
	prefixArgs   []string
	endpoint     string
	waitTimeout  time.Duration
	pollInterval time.Duration
	queryTimeout time.Duration
	log          zerolog.Logger

	startMu sync.Mutex
	mu      sync.Mutex
	current *Handle
}

func NewLauncher(cfg LauncherConfig) *Launcher {
	l := &Launcher{
		path:         cfg.Path,
		prefixArgs:   cfg.PrefixArgs,
		waitTimeout:  cfg.WaitTimeout,
		pollInterval: cfg.PollInterval,
		queryTimeout: cfg.QueryTimeout,
		log:          cfg.Logger,
	}

	if l.path == "" {
		l.path = config.DefaultMpvPath
	}
	if l.waitTimeout <= 0 {
		l.waitTimeout = config.EndpointWaitTimeout
	}
	if l.pollInterval <= 0 {
		l.pollInterval = config.EndpointPollInterval
	}
	if l.queryTimeout <= 0 {
		l.queryTimeout = config.QueryTimeout
	}

	dir := cfg.EndpointDir
	if dir == "" {
		dir = defaultEndpointDir()
	}
	l.endpoint = EndpointPath(dir, os.Getpid())

	return l
}

// EndpointPath is the control socket for a given process, so concurrent runs
// never share one.
func EndpointPath(dir string, pid int) string {
	return filepath.Join(dir, fmt.Sprintf("lyreplay-mpv-%d.sock", pid))
}

func defaultEndpointDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	dir = filepath.Join(dir, "lyreplay")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return os.TempDir()
	}
	return dir
}

func (l *Launcher) Endpoint() string {
	return l.endpoint
}

// Start stops any previous handle, launches the player against sourceRef and
// waits for the control endpoint. A handle whose endpoint never appeared is
// still returned; its queries return neutral values until it does.
func (l *Launcher) Start(ctx context.Context, sourceRef string) (*Handle, error) {
	if sourceRef == "" {
		return nil, ErrNoSource
	}

	// starts are serialized; mu only guards current so Stop never waits
	// behind an endpoint wait
	l.startMu.Lock()
	defer l.startMu.Unlock()

	l.Stop()
	_ = os.Remove(l.endpoint)

	args := append([]string{}, l.prefixArgs...)
	args = append(args,
		"--no-video",
		"--quiet",
		"--no-terminal",
		"--ytdl=yes",
		"--ytdl-format=bestaudio[ext=m4a]/bestaudio/best",
		"--input-ipc-server="+l.endpoint,
		sourceRef,
	)

	// stdio left nil, the player must never draw on our terminal
	cmd := exec.Command(l.path, args...)

	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	h := newHandle(l.endpoint, l.queryTimeout, l.log)
	h.cmd = cmd
	go h.wait()

	l.log.Debug().Int("pid", cmd.Process.Pid).Str("endpoint", l.endpoint).Msg("player started")

	l.mu.Lock()
	l.current = h
	l.mu.Unlock()

	ready := h.awaitEndpoint(ctx, l.waitTimeout, l.pollInterval)
	if !ready && !h.IsAlive() {
		h.Stop()
		l.release(h)
		return nil, fmt.Errorf("%w: process exited before exposing %s", ErrLaunch, l.endpoint)
	}
	if !ready {
		l.log.Warn().Str("endpoint", l.endpoint).Msg("control endpoint not ready yet")
	}

	return h, nil
}

// Stop stops the current handle, if any, including one whose Start is
// still waiting for its endpoint.
func (l *Launcher) Stop() {
	l.mu.Lock()
	h := l.current
	l.current = nil
	l.mu.Unlock()

	h.Stop()
}

func (l *Launcher) release(h *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == h {
		l.current = nil
	}
}

// Handle is one live player process plus its control endpoint.
type Handle struct {
	endpoint     string
	queryTimeout time.Duration
	log          zerolog.Logger

	cmd      *exec.Cmd
	done     chan struct{}
	stopOnce sync.Once

	// one request in flight at a time
	queryMu sync.Mutex
}

func newHandle(endpoint string, queryTimeout time.Duration, log zerolog.Logger) *Handle {
	return &Handle{
		endpoint:     endpoint,
		queryTimeout: queryTimeout,
		log:          log,
		done:         make(chan struct{}),
	}
}

func (h *Handle) Endpoint() string {
	if h == nil {
		return ""
	}
	return h.endpoint
}

func (h *Handle) wait() {
	_ = h.cmd.Wait()
	close(h.done)
}

func (h *Handle) awaitEndpoint(ctx context.Context, timeout time.Duration, interval time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if h.Ready() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-h.done:
			return h.Ready()
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// Ready reports whether the control endpoint exists.
func (h *Handle) Ready() bool {
	if h == nil {
		return false
	}
	_, err := os.Stat(h.endpoint)
	return err == nil
}

// IsAlive is true until the player process exits.
func (h *Handle) IsAlive() bool {
	if h == nil || h.cmd == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Stop terminates the process and removes the endpoint. Safe to call more
// than once, on a nil handle, or after the process already exited.
func (h *Handle) Stop() {
	if h == nil {
		return
	}

	h.stopOnce.Do(func() {
		if h.IsAlive() {
			_ = h.cmd.Process.Signal(syscall.SIGTERM)
			select {
			case <-h.done:
			case <-time.After(terminateGrace):
				_ = h.cmd.Process.Kill()
				<-h.done
			}
		}

		err := os.Remove(h.endpoint)
		if err != nil && !os.IsNotExist(err) {
			h.log.Debug().Err(err).Str("endpoint", h.endpoint).Msg("failed to remove endpoint")
		}
	})
}
