package cli

import (
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/config"
)

// GlobalOptions are shared flags that apply across commands.
type GlobalOptions struct {
	ConfigPath string
	Format     string // json | ndjson | table
	LogLevel   string
	LogFormat  string
}

var globalOpts = GlobalOptions{
	Format: "table",
}

// loaded in the root command's persistent pre-run
var (
	cfg *config.Config
	log = zap.NewNop()
)
