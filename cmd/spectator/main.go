// Command spectator follows a quiz session from a terminal, either over the
// display websocket or from the NATS mirror.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/quiz-night-backend/internal/logging"
	"github.com/DoyleJ11/quiz-night-backend/internal/natsbridge"
	"github.com/DoyleJ11/quiz-night-backend/pkg/types"
)

type Config struct {
	server  string
	code    string
	natsURL string
	verbose bool
}

func (c *Config) validate() error {
	if c.code == "" {
		return errors.New("--code is required")
	}
	if c.natsURL == "" && c.server == "" {
		return errors.New("one of --server or --nats-url is required")
	}
	return nil
}

func main() {
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZ_SPECTATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "spectator",
		Short: "Print a quiz session's display feed.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return watch(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "http://localhost:8080", "quiz server base URL (env: QUIZ_SPECTATOR_SERVER)")
	fs.StringVarP(&cfg.code, "code", "c", "", "session code (env: QUIZ_SPECTATOR_CODE)")
	fs.StringVar(&cfg.natsURL, "nats-url", "", "read from the NATS mirror instead of the server (env: QUIZ_SPECTATOR_NATS_URL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUIZ_SPECTATOR_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func watch(parent context.Context, cfg *Config) error {
	log, err := logging.New(cfg.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := types.NewReceiver(&textDisplay{w: os.Stdout})
	handle := func(data []byte) error {
		if err := rc.HandleJSON(data); err != nil {
			log.Warn("skipping message", zap.Error(err))
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.natsURL != "" {
		g.Go(func() error {
			nc, err := natsbridge.Connect(cfg.natsURL, log)
			if err != nil {
				return err
			}
			defer nc.Close()
			return natsbridge.Watch(gctx, nc, cfg.code, handle)
		})
	} else {
		g.Go(func() error {
			return readSocket(gctx, cfg, handle)
		})
	}
	return g.Wait()
}

func readSocket(ctx context.Context, cfg *Config, handle func([]byte) error) error {
	u, err := url.Parse(cfg.server)
	if err != nil {
		return err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/display"
	u.RawQuery = url.Values{"code": {cfg.code}}.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.CloseNow()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if err := handle(data); err != nil {
			return err
		}
	}
}
