package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pack-manager/src/app"
	"pack-manager/src/clipboard"
	"pack-manager/src/config"
	"pack-manager/src/discord"
	"pack-manager/src/gui"
	"pack-manager/src/hotkey"
	"pack-manager/src/logutil"
	"pack-manager/src/mapview"
	"pack-manager/src/notify"
	"pack-manager/src/runtimeinit"
	"pack-manager/src/singleinstance"
)

type mainOptions struct {
	configPath string
	envPath    string
	tokenPath  string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"pack-manager"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pack-manager",
		Short:         "Mark positions on the map and post them to Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json (default $PACK_MANAGER_CONFIG or ./config.json)")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to .env file")
	cmd.Flags().StringVar(&opts.tokenPath, "token-file", "", "Path to bot token file (highest precedence)")

	return cmd
}

func runWithOptions(opts mainOptions) error {
	cfg, log, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			ConfigPathOverride: opts.configPath,
			EnvPathOverride:    opts.envPath,
			TokenFileOverride:  opts.tokenPath,
		},
		InitClipboard: clipboard.Init,
	})
	if log != nil {
		defer logutil.Sync(log)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, delegated, err := acquireOrDelegate(ctx, log, singleinstance.Acquire, singleinstance.RequestShow)
	if err != nil {
		return err
	}
	if delegated {
		fmt.Println("pack manager is already running; its window was brought forward")
		return nil
	}
	defer guard.Close()

	surface, err := mapview.Load(cfg.MapImage, cfg.MapScale)
	if err != nil {
		return err
	}
	w, h := surface.Size()
	log.Infow("map loaded", "path", cfg.MapImage, "width", w, "height", h)

	var ready notify.Readiness
	client, err := discord.New(cfg.Token, &ready, log.Named("discord"))
	if err != nil {
		return err
	}

	a, err := app.New(app.Options{
		Surface:       surface,
		Extents:       cfg.Extents,
		Client:        client,
		Readiness:     &ready,
		GuildName:     cfg.GuildName,
		ChannelName:   cfg.ChannelName,
		Mention:       cfg.Mention,
		ReadClipboard: clipboard.ReadText,
		Log:           log,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	client.Start(ctx)
	defer client.Stop()

	if err := hotkey.Listen(ctx, cfg.Hotkey, func() { a.Hotkey().OnTrigger(ctx) }, log.Named("hotkey")); err != nil {
		log.Warnw("global hotkey disabled", "error", err)
	}

	gui.Run(ctx, a, cfg, gui.RunOptions{ShowRequests: guard.ShowRequests(), Log: log.Named("gui")})
	log.Info("window closed, shutting down")
	return nil
}

type acquireFunc func(context.Context, *zap.SugaredLogger) (*singleinstance.Guard, error)

// acquireOrDelegate claims the resident slot. When another instance already
// holds it, that instance is asked to show its window and delegated is true.
func acquireOrDelegate(ctx context.Context, log *zap.SugaredLogger, acquire acquireFunc, requestShow func(context.Context) error) (*singleinstance.Guard, bool, error) {
	guard, err := acquire(ctx, log.Named("singleinstance"))
	if err == nil {
		return guard, false, nil
	}
	if !errors.Is(err, singleinstance.ErrAlreadyRunning) {
		return nil, false, err
	}
	if showErr := requestShow(ctx); showErr != nil {
		log.Warnw("resident did not accept show request", "error", showErr)
		return nil, false, err
	}
	return nil, true, nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"config", "env", "token-file"} {
			single := "-" + name
			switch {
			case arg == single:
				normalized[i] = "-" + single
			case strings.HasPrefix(arg, single+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
