// Command mdtgen converts Warcraft Logs cast data into MRT notes and Viserio
// planner strings from the terminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mdt-generator/backend/internal/config"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/spf13/cobra"
)

var Version = "dev"

// options shared by every subcommand
type options struct {
	configPath  string
	rulesetPath string
	window      int
	players     map[string]string
	jsonOut     bool
	logLevel    string

	cfg     *config.AppConfig
	ruleset *rules.Ruleset
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "mdtgen",
		Short:         "MDT generator - cast listings, MRT notes and Viserio strings",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (environment only when empty)")
	flags.StringVar(&opts.rulesetPath, "ruleset", "", "ruleset YAML overriding the configured one")
	flags.IntVarP(&opts.window, "window", "w", 0, "grouping window in seconds (0 uses the config)")
	flags.StringToStringVarP(&opts.players, "player", "p", nil, "class to player mapping, e.g. Druid=Leafy")
	flags.BoolVarP(&opts.jsonOut, "json", "j", false, "output as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(noteCmd(opts))
	rootCmd.AddCommand(viserioCmd(opts))
	rootCmd.AddCommand(convertCmd(opts))
	rootCmd.AddCommand(decodeCmd(opts))
	rootCmd.AddCommand(fightsCmd(opts))
	rootCmd.AddCommand(fetchCmd(opts))

	return rootCmd
}

func (o *options) load() error {
	if err := logger.Init(o.logLevel); err != nil {
		return err
	}
	logger.SetOutput(os.Stderr)

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	rulesetPath := cfg.Conversion.RulesetFile
	if o.rulesetPath != "" {
		rulesetPath = o.rulesetPath
	}
	rs, err := rules.LoadOrDefault(rulesetPath)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}
	o.ruleset = rs

	if o.window <= 0 {
		o.window = cfg.Conversion.GroupWindowSeconds
	}
	return nil
}

func (o *options) resolver() *rules.Resolver {
	return rules.NewResolver(o.ruleset, models.ClassMappings(o.players))
}

// readInput reads the named file, or stdin for "-" and no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
