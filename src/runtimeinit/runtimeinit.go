package runtimeinit

import (
	"fmt"

	"go.uber.org/zap"

	"pack-manager/src/config"
	"pack-manager/src/logutil"
)

type Options struct {
	LoadOptions   config.LoadOptions
	SetupLogging  func(enableFile bool, path string) *zap.SugaredLogger
	InitClipboard func() error
}

// Bootstrap loads and validates configuration, sets up logging and prepares
// the clipboard. A clipboard failure is logged, not returned: the window
// still works without it.
func Bootstrap(opts Options) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setup := opts.SetupLogging
	if setup == nil {
		setup = logutil.Setup
	}
	log := setup(cfg.EnableFileLogging, cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Infow("configuration loaded",
		"config", cfg.ConfigPath, "server", cfg.GuildName, "channel", cfg.ChannelName,
		"hotkey", cfg.Hotkey, "token", logutil.RedactKey(cfg.Token))

	if opts.InitClipboard != nil {
		if err := opts.InitClipboard(); err != nil {
			log.Warnw("clipboard unavailable, quick set and hotkey will fail", "error", err)
		}
	}

	return cfg, log, nil
}
