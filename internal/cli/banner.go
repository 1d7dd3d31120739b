package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"
)

const bannerWidth = 67

var bannerArt = []string{
	"██████╗  ██████╗██╗     ██╗██████╗     ███╗   ███╗ ██████╗██████╗ ",
	"██╔══██╗██╔════╝██║     ██║╚════██╗    ████╗ ████║██╔════╝██╔══██╗",
	"██████╔╝██║     ██║     ██║ █████╔╝    ██╔████╔██║██║     ██████╔╝",
	"██╔═══╝ ██║     ██║     ██║██╔═══╝     ██║╚██╔╝██║██║     ██╔═══╝ ",
	"██║     ╚██████╗███████╗██║███████╗    ██║ ╚═╝ ██║╚██████╗██║     ",
	"╚═╝      ╚═════╝╚══════╝╚═╝╚══════╝    ╚═╝     ╚═╝ ╚═════╝╚═╝     ",
}

const bannerTagline = "          Model Context Protocol Server for PCLI2           "

var (
	gradientStart = colorful.Color{R: 36.0 / 255, G: 144.0 / 255, B: 1}
	gradientEnd   = colorful.Color{R: 1, G: 120.0 / 255, B: 48.0 / 255}
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printBanner(out io.Writer, version string) {
	color := isTerminal(out)
	emit := func(line string) {
		if color {
			line = gradientLine(line)
		}
		fmt.Fprintln(out, line)
	}

	for _, line := range bannerArt {
		emit(line)
	}
	emit(bannerTagline)
	emit(centerText("Version "+version, bannerWidth))
	fmt.Fprintln(out)
}

func centerText(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// gradientLine colours each rune along a blue to orange ramp using 24-bit
// ANSI escapes.
func gradientLine(line string) string {
	runes := []rune(line)
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		cr, cg, cb := gradientStart.BlendRgb(gradientEnd, t).RGB255()
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm%c", cr, cg, cb, r)
	}
	b.WriteString("\x1b[0m")
	return b.String()
}
