package terminal

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"karolbroda.com/lyreplay/internal/config"
)

type Event int32

const (
	EventNone Event = iota
	EventSwitchPattern
)

func (e Event) String() string {
	switch e {
	case EventSwitchPattern:
		return "switch-pattern"
	default:
		return "none"
	}
}

var ErrAlreadyStarted = errors.New("listener already started")

// Listener captures single keystrokes on its own goroutine. Only the switch
// key produces an event; everything else is dropped. Events between two
// Poll calls collapse into one.
type Listener struct {
	file        *os.File
	key         byte
	pollTimeout time.Duration
	log         zerolog.Logger

	pending atomic.Int32

	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	restoreOnce sync.Once
	prevState   *term.State
}

func NewListener(file *os.File, key byte, log zerolog.Logger) *Listener {
	if key == 0 {
		key = config.DefaultSwitchKey
	}
	return &Listener{
		file:        file,
		key:         key,
		pollTimeout: config.InputPollTimeout,
		log:         log,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start switches a terminal input to non-canonical mode and begins capture.
// Non-terminal inputs are read as they are.
func (l *Listener) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	fd := int(l.file.Fd())
	if term.IsTerminal(fd) {
		state, err := term.GetState(fd)
		if err != nil {
			close(l.done)
			return err
		}
		l.prevState = state

		err = enableCbreak(fd)
		if err != nil {
			l.restore()
			close(l.done)
			return err
		}
	}

	go l.loop(fd)
	return nil
}

// Poll returns and clears the last captured event without blocking.
func (l *Listener) Poll() Event {
	return Event(l.pending.Swap(int32(EventNone)))
}

// Stop ends capture and restores the terminal. Idempotent, and safe to call
// when Start was never called or failed.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	if l.started.Load() {
		<-l.done
	}
	l.restore()
}

func (l *Listener) restore() {
	l.restoreOnce.Do(func() {
		if l.prevState == nil {
			return
		}
		err := term.Restore(int(l.file.Fd()), l.prevState)
		if err != nil {
			l.log.Warn().Err(err).Msg("failed to restore terminal mode")
		}
	})
}

func (l *Listener) loop(fd int) {
	defer close(l.done)
	defer l.restore()

	timeoutMs := int(l.pollTimeout / time.Millisecond)
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	buf := make([]byte, 64)

	for {
		select {
		case <-l.stop:
			return
		default:
		}

		fds[0].Revents = 0
		n, err := unix.Poll(fds, timeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			l.log.Debug().Err(err).Msg("input poll failed")
			return
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && fds[0].Revents&unix.POLLIN == 0 {
			return
		}

		read, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return
		}
		if read == 0 {
			// end of input, nothing more will arrive
			return
		}

		l.consume(buf[:read])
	}
}

func (l *Listener) consume(input []byte) {
	for _, b := range input {
		if b == l.key {
			l.pending.Store(int32(EventSwitchPattern))
		}
	}
}
