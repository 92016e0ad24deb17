package terminal

import (
	"io"
	"os"
)

// Reset undoes anything a crashed surface may have left behind: hidden
// cursor, colours, alternate screen.
func Reset() {
	ResetTo(os.Stdout)
}

func ResetTo(w io.Writer) {
	_, _ = io.WriteString(w, "\033[?25h")
	_, _ = io.WriteString(w, "\033[0m")
	_, _ = io.WriteString(w, "\033[?1049l")
	if f, ok := w.(*os.File); ok {
		_ = f.Sync()
	}
}
