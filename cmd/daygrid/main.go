package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daygrid/internal/config"
	appLog "daygrid/internal/log"
	"daygrid/internal/pipeline"
	"daygrid/internal/web"
)

type flagConfig struct {
	configPath string
	envFile    string
	listen     string
	date       string
	once       bool
	png        bool
	dump       bool
}

func main() {
	flags := parseFlags()

	if err := config.LoadEnv(flags.envFile); err != nil {
		appLog.Error("failed to load env file", err, "env_file", flags.envFile)
		os.Exit(1)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := conf.ApplyEnv(); err != nil {
		appLog.Error("invalid environment override", err)
		os.Exit(1)
	}

	// CLI --listen overrides config file and environment.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	level, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		appLog.Warn("unknown log level, using info", "log_level", conf.LogLevel)
	}
	appLog.Configure(appLog.Options{Level: level, Encoding: conf.LogFormat})
	defer func() { _ = appLog.Sync() }()

	appLog.Info("daygrid starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.Refresh,
		"width", conf.Width,
		"rtl", conf.RTL,
		"start_hour", conf.Grid.StartHour,
		"end_hour", conf.Grid.EndHour,
		"source_count", len(conf.Sources),
		"once", flags.once,
		"png", flags.png,
		"dump", flags.dump,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	builder := pipeline.NewBuilder(conf, nil)
	out := outputs{cfg: conf, png: flags.png, dump: flags.dump}

	if flags.once {
		if err := runOnce(ctx, conf, builder, out, flags.date); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		appLog.Info("daygrid exiting")
		return
	}

	srv := web.NewServer(conf, builder)
	refresh := newRefreshJob(func() {
		srv.Invalidate()
		if err := runOnce(ctx, conf, builder, out, ""); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})

	sched, err := newScheduler(conf.Refresh, refresh)
	if err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.Refresh)
		os.Exit(1)
	}
	go refresh.Run()
	sched.Start()

	if err := web.ListenAndServe(ctx, conf, srv); err != nil {
		appLog.Error("HTTP server failed", err)
	}

	// Wait for a running refresh to finish before exiting.
	<-sched.Stop().Done()
	time.Sleep(100 * time.Millisecond)
	appLog.Info("daygrid exiting")
}

// runOnce builds one day and writes the configured outputs.
func runOnce(ctx context.Context, conf *config.Config, builder *pipeline.Builder, out outputs, date string) error {
	loc, err := conf.Location()
	if err != nil {
		return err
	}
	day, err := pipeline.ParseDay(date, loc, time.Now())
	if err != nil {
		return err
	}
	res, err := builder.Build(ctx, day)
	if err != nil {
		return err
	}
	return out.write(ctx, res)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.envFile, "env", ".env", "Path to an optional .env file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.date, "date", "", "Day to render in --once mode, YYYY-MM-DD (default today)")
	flag.BoolVar(&cfg.once, "once", false, "Build and render one day, then exit")
	flag.BoolVar(&cfg.png, "png", false, "Also capture preview.png with headless Chromium")
	flag.BoolVar(&cfg.dump, "dump", false, "Also write layout.json")

	flag.Parse()

	return cfg
}
