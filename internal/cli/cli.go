package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Log levels re-exported for main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared across the command tree: one logger, whose
// level the root command's PersistentPreRunE sets once --verbose is known.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI writing to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level in place.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the driver command tree: a single root command
// translating "driver --<in-fmt> <in-path> --<out-fmt> <out-path>" as
// cobra long flags (the single-dash form "-ddl" is not accepted), plus
// the "watch" and "serve" subcommands.
func (c *CLI) RootCommand() *cobra.Command {
	return c.rootCommand()
}
