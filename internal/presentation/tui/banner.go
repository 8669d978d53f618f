package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when the dialog REPL starts.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String("  _____              _      _ _ ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String(" |_   _|            | |    (_) |").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String("   | | ___ _ __   __| |_ __ _| |").Foreground(p.Color("#c084fc"))
	s4 := termenv.String("   | |/ _ \\ '_ \\ / _` | '__| | |").Foreground(p.Color("#e879f9"))
	s5 := termenv.String("   | |  __/ | | | (_| | |  | | |").Foreground(p.Color("#f472b6"))
	s6 := termenv.String("   \\_/\\___|_| |_|\\__,_|_|  |_|_|").Foreground(p.Color("#fb7185"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	if v := strings.TrimSpace(version); v != "" {
		tag := termenv.String("   v" + v).Faint()
		fmt.Println(tag)
	}
	fmt.Println()
}
