package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	port           int
	publicURL      string
	databaseURL    string
	natsURL        string
	autoAdvance    bool
	allowedOrigins []string
	preload        []string
	theme          string
	verbose        bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.publicURL != "" {
		u, err := url.Parse(c.publicURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return errors.New("--public-url must be an absolute http(s) URL")
		}
		c.publicURL = strings.TrimSuffix(c.publicURL, "/")
	}
	return nil
}

func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.bind, c.port)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quiz-server",
		Short:         "Hosts quiz night sessions for a host console and any number of displays.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZ_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: QUIZ_PORT)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally reachable base URL for join links and QR codes (env: QUIZ_PUBLIC_URL)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres DSN for the game catalog, disabled when empty (env: QUIZ_DATABASE_URL)")
	fs.StringVar(&cfg.natsURL, "nats-url", "", "NATS server to mirror display messages to, disabled when empty (env: QUIZ_NATS_URL)")
	fs.BoolVar(&cfg.autoAdvance, "auto-advance", false, "move to the next question when a rounds timer runs out (env: QUIZ_AUTO_ADVANCE)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed for CORS and websockets (env: QUIZ_ALLOWED_ORIGINS)")
	fs.StringSliceVar(&cfg.preload, "preload", nil, "game files to open as sessions at startup (env: QUIZ_PRELOAD)")
	fs.StringVar(&cfg.theme, "theme", "", "display theme for preloaded sessions (env: QUIZ_THEME)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUIZ_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quiz-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
