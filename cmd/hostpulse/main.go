package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostpulse/hostpulse/collector/metrics"
	hpshare "github.com/hostpulse/hostpulse/share"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/store"
)

var statusHelp = `
  Usage: hostpulse [options]

  hostpulse prints the most recent sample recorded by hostpulsed together
  with storage counters. It reads the samples log and the scratch tail
  directly, the collector does not need to be running.

  Exits with a non-zero status when nothing has been recorded yet.

  Options:

    --json, Print the latest sample as JSON instead of a table.

    --data-dir, An optional arg to define the directory hostpulsed writes the
    durable samples log to. By default, "/var/lib/hostpulse" is used.

    --scratch-file, An optional arg to define the path of the scratch tail
    written by hostpulsed. By default it is resolved the same way hostpulsed
    resolves it.

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
	asJSON   *bool
	viperCfg *viper.Viper
	cfg      = &config.Config{}
)

func init() {
	pFlags := RootCmd.PersistentFlags()

	pFlags.String("data-dir", config.DefaultDataDir, "")
	pFlags.String("scratch-file", "", "")
	pFlags.StringP("verbose", "v", "", "")

	cfgPath = pFlags.StringP("config", "c", "", "")
	asJSON = pFlags.Bool("json", false, "")

	RootCmd.SetUsageFunc(func(*cobra.Command) error {
		fmt.Print(statusHelp)
		os.Exit(1)
		return nil
	})

	viperCfg = viper.New()
	viperCfg.SetConfigType("toml")

	viperCfg.SetDefault("logging.log_level", "error")

	// map config fields to CLI args:
	// _ is used to ignore errors to pass linter check
	_ = viperCfg.BindPFlag("logging.log_level", pFlags.Lookup("verbose"))
	_ = viperCfg.BindPFlag("monitoring.data_dir", pFlags.Lookup("data-dir"))
	_ = viperCfg.BindPFlag("monitoring.scratch_file", pFlags.Lookup("scratch-file"))

	// map ENV variables
	_ = viperCfg.BindEnv("monitoring.data_dir", "HOSTPULSE_DATA_DIR")
	_ = viperCfg.BindEnv("monitoring.scratch_file", "HOSTPULSE_SCRATCH_FILE")
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

	// table output goes to stdout, log noise stays on stderr
	lg := logger.NewLogger("status", logger.LogOutput{File: os.Stderr}, cfg.Logging.LogLevel)
	mLog.Flush(lg)

	reader := store.NewReader(&cfg.Monitoring, lg)

	latest, err := reader.Latest()
	if err != nil {
		if errors.Is(err, store.ErrNoSamples) {
			fmt.Fprintln(os.Stderr, "no data available")
			os.Exit(1)
		}
		log.Fatal(err)
	}

	if *asJSON {
		printSampleJSON(os.Stdout, latest)
		return
	}

	status, err := reader.Status()
	if err != nil {
		log.Fatal(err)
	}

	hostname, err := metrics.NewProbe().Hostname()
	if err != nil {
		lg.Debugf("could not read hostname: %v", err)
		hostname = ""
	}

	printSampleDetail(os.Stdout, hostname, latest, status)
}
