package terminal

import "golang.org/x/sys/unix"

// enableCbreak turns off line buffering and echo but keeps signal keys, so
// ctrl+c still interrupts the run.
func enableCbreak(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}
