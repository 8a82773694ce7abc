package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` _                   _             `, "#818cf8"},
	{`| |_ _   _ _ __ _ __ (_)_ __   __ _ `, "#a78bfa"},
	{`| __| | | | '__| '_ \| | '_ \ / _' |`, "#c084fc"},
	{`| |_| |_| | |  | | | | | | | | (_| |`, "#e879f9"},
	{` \__|\__,_|_|  |_| |_|_|_| |_|\__, |`, "#f472b6"},
	{`                              |___/ `, "#fb7185"},
}

// PrintBanner writes the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  "+version).Faint())
	fmt.Fprintln(w)
}
