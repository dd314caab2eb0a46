// Package app wires configuration, logging, the Telegram transport, the
// homework API client and the poll loop into one process.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homeworkbot/internal/config"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/poller"
	"homeworkbot/internal/practicum"
	"homeworkbot/internal/runtime/supervisor"
	kit "homeworkbot/internal/transport"
	telegram "homeworkbot/internal/transport/telegram/adapter"
	logx "homeworkbot/pkg/logx"
	"homeworkbot/pkg/sdnotify"
)

const stopTimeout = 5 * time.Second

// Options configure New. Sender and Fetcher replace the Telegram adapter and
// the homework API client when set.
type Options struct {
	ConfigPath string
	EnvFile    string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	Sender  kit.Sender
	Fetcher poller.Fetcher
}

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	target    kit.ChatTarget
	notif     *notifier.Service
	loop      *poller.Loop
	intervals chan poller.Interval
	sd        *sdnotify.Notifier
}

// New loads configuration and credentials and builds every component.
// Missing credentials are logged at critical level and returned as an error
// matching config.ErrMissingCredentials; nothing is started in that case.
func New(opts Options) (*App, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	cfgm := config.NewManager(opts.ConfigPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	creds, credErr := config.CredentialsFromEnv(opts.Getenv)

	sender := opts.Sender
	if sender == nil && credErr == nil {
		timeout, err := telegramTimeout(cfg)
		if err != nil {
			return nil, err
		}
		bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
		ad, err := telegram.New(telegram.Config{
			Token:   creds.TelegramToken,
			APIURL:  cfg.Telegram.APIURL,
			Timeout: timeout,
		}, bootLog)
		if err != nil {
			return nil, err
		}
		sender = ad
	}

	// The Telegram log sink needs a target, which is only known once the
	// credentials are parsed. Bootstrap without it and apply the final
	// config below.
	baseLogCfg := mapLoggingConfig(cfg)
	baseLogCfg.Telegram.Enabled = false
	logSvc, root := logx.New(baseLogCfg, sender)
	log := root.With(logx.String("comp", "app"))

	fail := func(msg string, err error) (*App, error) {
		log.Critical(msg, logx.Err(err))
		_ = logSvc.Close()
		return nil, err
	}

	if credErr != nil {
		return fail("missing required environment variables", credErr)
	}

	target, err := kit.ParseChatTarget(creds.ChatID, cfg.Telegram.ThreadID)
	if err != nil {
		return fail("invalid chat id", fmt.Errorf("%s: %w", config.EnvTelegramChatID, err))
	}
	logSvc.SetTelegramTarget(target)
	logSvc.Apply(mapLoggingConfig(cfg))

	ncfg, err := mapNotifierConfig(cfg, target)
	if err != nil {
		return fail("invalid notifier config", err)
	}
	notif := notifier.New(ncfg, sender, root.With(logx.String("comp", "notifier")))

	fetcher := opts.Fetcher
	if fetcher == nil {
		pcfg, err := mapPracticumConfig(cfg, creds.PracticumToken)
		if err != nil {
			return fail("invalid api config", err)
		}
		client, err := practicum.New(pcfg, root.With(logx.String("comp", "practicum")))
		if err != nil {
			return fail("cannot create api client", err)
		}
		fetcher = client
	}

	iv, err := mapInterval(cfg)
	if err != nil {
		return fail("invalid poll interval", err)
	}

	sd := sdnotify.New(root.With(logx.String("comp", "sdnotify")))
	intervals := make(chan poller.Interval, 1)
	loop, err := poller.New(iv, fetcher, notif, root.With(logx.String("comp", "poller")),
		poller.WithReporter(sd),
		poller.WithIntervalUpdates(intervals),
	)
	if err != nil {
		return fail("cannot create poll loop", err)
	}

	cfgm.SetLogger(root.With(logx.String("comp", "config")))

	return &App{
		cfgm:      cfgm,
		log:       log,
		logs:      logSvc,
		target:    target,
		notif:     notif,
		loop:      loop,
		intervals: intervals,
		sd:        sd,
	}, nil
}

// Run polls until ctx is cancelled, then shuts down and closes the log
// sinks. The returned error is the first goroutine failure, if any.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	cfg := a.cfgm.Get()
	if cfg.Watch && a.cfgm.Path() != "" {
		sub, unsubscribe := a.cfgm.Subscribe(4)
		sup.Go0("config.reload", func(c context.Context) {
			defer unsubscribe()
			a.reloadLoop(c, sub)
		})
		sup.Go("config.watch", a.cfgm.Watch)
	}
	sup.Go("poller", a.loop.Run)

	a.sd.Ready()
	a.log.Info("bot started", logx.String("interval", cfg.Poll.Interval), logx.Bool("watch", cfg.Watch))

	<-sup.Context().Done()
	a.sd.Stopping()
	a.log.Info("stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err := sup.Stop(stopCtx)
	if err != nil {
		a.log.Error("stopped with error", logx.Err(err))
	} else {
		a.log.Info("stopped")
	}
	_ = a.logs.Close()
	return err
}

func (a *App) reloadLoop(ctx context.Context, sub <-chan *config.Config) {
	last := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			a.applyConfig(last, next)
			last = next
		}
	}
}

// applyConfig applies the live-reloadable sections of next.
func (a *App) applyConfig(prev, next *config.Config) {
	sections, attrs := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	if config.RequiresRestart(sections) {
		a.log.Warn("some config changes need a restart to take effect", logx.String("changed", strings.Join(sections, ",")))
	}

	a.logs.Apply(mapLoggingConfig(next))

	if ncfg, err := mapNotifierConfig(next, a.target); err != nil {
		a.log.Warn("invalid notifier config; keeping previous", logx.Err(err))
	} else {
		a.notif.Apply(ncfg)
	}

	if prev.Poll != next.Poll {
		iv, err := mapInterval(next)
		if err != nil {
			a.log.Warn("invalid poll interval; keeping previous", logx.Err(err))
		} else {
			// Only the latest interval matters.
			select {
			case <-a.intervals:
			default:
			}
			a.intervals <- iv
		}
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}
