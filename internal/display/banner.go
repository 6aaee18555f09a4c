package display

import (
	"fmt"
	"io"

	"github.com/backmassage/multiencode/internal/term"
)

// PrintBanner prints the ASCII art banner in magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Magenta.Sprint(`                 _ _   _
 _ __ ___  _   _| | |_(_) ___ _ __   ___ ___   __| | ___
| '_ `+"`"+` _ \| | | | | __| |/ _ \ '_ \ / __/ _ \ / _`+"`"+` |/ _ \
| | | | | | |_| | | |_| |  __/ | | | (_| (_) | (_| |  __/
|_| |_| |_|\__,_|_|\__|_|\___|_| |_|\___\___/ \__,_|\___|`))
}
