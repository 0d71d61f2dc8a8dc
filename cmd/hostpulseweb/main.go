package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostpulse/hostpulse/collector/metrics"
	hpshare "github.com/hostpulse/hostpulse/share"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/web"
)

var webHelp = `
  Usage: hostpulseweb [options]

  hostpulseweb serves the telemetry recorded by hostpulsed as PNG charts
  and JSON summaries. It reads the durable samples log and the scratch
  tail directly from disk, it does not talk to the collector process.

  Endpoints:

    GET /{window}/{metric}  chart image; window is "all" or "hour", metric is
                            one of "cpu", "temp", "memory", "disk", "network",
                            "diskio". Append "?w=<pixels>" for a resized copy.
    GET /uptime             host and web process uptime
    GET /config             the running configuration
    GET /status             the latest sample and storage counters
    GET /ws/live            websocket pushing each new sample as it is recorded

  Options:

    --addr, -a, An optional arg to define the HTTP(S) listen address.
    By default, "0.0.0.0:9000" is used.

    --doc-root, An optional arg to define a local directory path. If specified,
    the contents of the directory are served on "/", next to the chart routes.

    --cert-file, An optional arg to define a path to a certificate file.
    Requires --key-file. If set, the server serves HTTPS.

    --key-file, An optional arg to define a path to the certificate private key.

    --max-points, An optional arg to define how many points a chart line may
    carry before it is downsampled. By default, "200" is used.

    --cors-origins, An optional arg to define allowed CORS origins for the
    JSON endpoints. Can be used multiple times. By default, all origins are allowed.

    --interval, An optional arg that must match the sampling interval of
    hostpulsed, it drives the chart cache lifetime. By default, "60s" is used.

    --data-dir, An optional arg to define the directory hostpulsed writes the
    durable samples log to. By default, "/var/lib/hostpulse" is used.

    --scratch-file, An optional arg to define the path of the scratch tail
    written by hostpulsed. By default it is resolved the same way hostpulsed
    resolves it.

    --log-file, -l, Specifies log file path. (defaults to empty string: log printed to stdout)

    --verbose, -v, Specify log level. Values: "error", "info", "debug" (defaults to "error")

    --config, -c, An optional arg to define a path to a config file. If it is set then
    configuration will be loaded from the file. Note: command arguments and env variables will override them.
    Config file should be in TOML format. You can find an example "hostpulse.example.conf" in the release archive.

    --help, -h, This help text

    --version, Print version info and exit

`

var (
	RootCmd = &cobra.Command{
		Version: hpshare.BuildVersion,
		Run:     runMain,
	}

	cfgPath  *string
	viperCfg *viper.Viper
	cfg      = &config.Config{}
)

func init() {
	pFlags := RootCmd.PersistentFlags()

	pFlags.StringP("addr", "a", "", "")
	pFlags.String("doc-root", "", "")
	pFlags.String("cert-file", "", "")
	pFlags.String("key-file", "", "")
	pFlags.Int("max-points", 0, "")
	pFlags.StringSlice("cors-origins", nil, "")
	pFlags.Duration("interval", 0, "")
	pFlags.String("data-dir", config.DefaultDataDir, "")
	pFlags.String("scratch-file", "", "")
	pFlags.StringP("log-file", "l", "", "")
	pFlags.StringP("verbose", "v", "", "")

	cfgPath = pFlags.StringP("config", "c", "", "")

	RootCmd.SetUsageFunc(func(*cobra.Command) error {
		fmt.Print(webHelp)
		os.Exit(1)
		return nil
	})

	viperCfg = viper.New()
	viperCfg.SetConfigType("toml")

	viperCfg.SetDefault("logging.log_level", "error")
	viperCfg.SetDefault("web.address", config.DefaultWebAddress)

	// map config fields to CLI args:
	// _ is used to ignore errors to pass linter check
	_ = viperCfg.BindPFlag("logging.log_file", pFlags.Lookup("log-file"))
	_ = viperCfg.BindPFlag("logging.log_level", pFlags.Lookup("verbose"))
	_ = viperCfg.BindPFlag("web.address", pFlags.Lookup("addr"))
	_ = viperCfg.BindPFlag("web.doc_root", pFlags.Lookup("doc-root"))
	_ = viperCfg.BindPFlag("web.cert_file", pFlags.Lookup("cert-file"))
	_ = viperCfg.BindPFlag("web.key_file", pFlags.Lookup("key-file"))
	_ = viperCfg.BindPFlag("web.max_points", pFlags.Lookup("max-points"))
	_ = viperCfg.BindPFlag("web.cors_origins", pFlags.Lookup("cors-origins"))
	_ = viperCfg.BindPFlag("monitoring.interval", pFlags.Lookup("interval"))
	_ = viperCfg.BindPFlag("monitoring.data_dir", pFlags.Lookup("data-dir"))
	_ = viperCfg.BindPFlag("monitoring.scratch_file", pFlags.Lookup("scratch-file"))

	// map ENV variables
	_ = viperCfg.BindEnv("web.address", "HOSTPULSE_WEB_ADDR")
	_ = viperCfg.BindEnv("monitoring.data_dir", "HOSTPULSE_DATA_DIR")
	_ = viperCfg.BindEnv("monitoring.scratch_file", "HOSTPULSE_SCRATCH_FILE")
	_ = viperCfg.BindEnv("logging.log_level", "HOSTPULSE_LOG_LEVEL")
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func tryDecodeConfig() error {
	if *cfgPath != "" {
		viperCfg.SetConfigFile(*cfgPath)
	} else {
		viperCfg.AddConfigPath(".")
		viperCfg.SetConfigName("hostpulse.conf")
	}

	return hpshare.DecodeViperConfig(viperCfg, cfg)
}

func runMain(*cobra.Command, []string) {
	err := tryDecodeConfig()
	if err != nil {
		log.Fatal(err)
	}

	mLog := logger.NewMemLogger()
	err = cfg.Monitoring.ParseAndValidate(&mLog)
	if err != nil {
		log.Fatal(err)
	}
	err = cfg.Web.ParseAndValidate()
	if err != nil {
		log.Fatal(err)
	}

	err = cfg.Logging.LogOutput.Start()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		cfg.Logging.LogOutput.Shutdown()
	}()

	lg := logger.NewLogger("web", cfg.Logging.LogOutput, cfg.Logging.LogLevel)
	mLog.Flush(lg)

	srv, err := web.NewServer(cfg, lg, metrics.NewProbe())
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lg.Infof("got signal %s, shutting down", sig)
		cancel()
	}()

	if err = srv.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
