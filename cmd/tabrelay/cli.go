package main

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kong"
)

// Dependencies holds the I/O and context shared by commands.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config kong.ConfigFlag `help:"YAML file with flag values" type:"existingfile"`

	Serve ServeCmd `cmd:"" default:"withargs" help:"Run the relay server (default)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr           string        `default:":4001" env:"TABRELAY_ADDR" help:"Listen address"`
	Site           string        `default:"https://www.ultimate-guitar.com" env:"TABRELAY_SITE" help:"Base URL of the tab site"`
	Headless       bool          `default:"true" negatable:"" env:"TABRELAY_HEADLESS" help:"Run Chrome without a window"`
	BrowserBin     string        `env:"TABRELAY_BROWSER_BIN" help:"Chrome binary to use instead of the detected one"`
	LookupTimeout  time.Duration `default:"30s" env:"TABRELAY_LOOKUP_TIMEOUT" help:"Give up on a lookup after this long"`
	KeystrokeDelay time.Duration `default:"50ms" env:"TABRELAY_KEYSTROKE_DELAY" help:"Delay between typed characters"`
	LogLevel       string        `default:"info" enum:"debug,info,warn,error" env:"TABRELAY_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	Categories     []string      `default:"chords,tab,bass" env:"TABRELAY_CATEGORIES" help:"Search result categories to keep"`
}
