package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostpulse/hostpulse/cmd/hostpulsed/servicemanagement"
	"github.com/hostpulse/hostpulse/collector"
	"github.com/hostpulse/hostpulse/collector/metrics"
	hpshare "github.com/hostpulse/hostpulse/share"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/store"
)

var monitorHelp = `
  Usage: hostpulsed [options]

  hostpulsed samples host telemetry (CPU usage, CPU temperature, memory,
  disk capacity, disk I/O and network throughput) at a fixed interval and
  appends it to a durable samples log with bounded retention. The web
  process (hostpulseweb) and the status command (hostpulse) read that log,
  the processes never talk to each other directly.

  Options:

    --interval, An optional arg to define the sampling interval.
    It can contain "h"(hours), "m"(minutes), "s"(seconds). By default, "60s" is used.

    --data-dir, An optional arg to define a local directory path to store
    the durable samples log. By default, "/var/lib/hostpulse" is used.

    --scratch-file, An optional arg to define the path of the in-flight tail
    mirror. By default it is placed in "/dev/shm" when that exists, falling
    back to the data directory.

    --retention, An optional arg to define how long durable samples are kept.
    It can contain "d"(days), "h"(hours), "m"(minutes), "s"(seconds).
    By default, "7d" is used.

    --disk-paths, An optional arg to define mount points to sample for disk
    capacity. Can be used multiple times. (e.g. --disk-paths / --disk-paths /data)
    By default, "/" is used.

    --net-interfaces, An optional arg to restrict network sampling to the given
    interfaces. Can be used multiple times. By default, all non-loopback
    interfaces are sampled.

    --disk-io-devices, An optional arg to restrict disk I/O sampling to the
    given block devices. Can be used multiple times. By default, all devices
    reported by the kernel are sampled.

    --temp-sensors, An optional arg to define sensor keys probed for the CPU
    temperature, first readable key wins. Can be used multiple times.
    By default, a list of common keys ("cpu_thermal", "coretemp", ...) is probed.

    --no-temp, Disables CPU temperature collection.

    --service, Manages hostpulsed running as a service.
    Values: "install", "uninstall", "start", "stop".

    --service-user, An optional arg to define a user under which to run the
    service. Used on Linux only. Defaults to "hostpulse".

    --log-file, -l, Specifies log file path. (defaults to empty string: log printed to stdout)

    --verbose, -v, Specify log level. Values: "error", "info", "debug" (defaults to "error")

    --config, -c, An optional arg to define a path to a config file. If it is set then
    configuration will be loaded from the file. Note: command arguments and env variables will override them.
    Config file should be in TOML format. You can find an example "hostpulse.example.conf" in the release archive.

    --help, -h, This help text

    --version, Print version info and exit

  Signals:
    The hostpulsed process is listening for SIGUSR1 to flush buffered samples to the durable log

`

var (
	RootCmd = &cobra.Command{
		Version: hpshare.BuildVersion,
		Run:     runMain,
	}

	cfgPath    *string
	svcCommand *string
	svcUser    *string
	viperCfg   *viper.Viper
	cfg        = &config.Config{}
)

func init() {
	pFlags := RootCmd.PersistentFlags()

	pFlags.Duration("interval", 0, "")
	pFlags.String("data-dir", config.DefaultDataDir, "")
	pFlags.String("scratch-file", "", "")
	pFlags.String("retention", "", "")
	pFlags.StringSlice("disk-paths", nil, "")
	pFlags.StringSlice("net-interfaces", nil, "")
	pFlags.StringSlice("disk-io-devices", nil, "")
	pFlags.StringSlice("temp-sensors", nil, "")
	pFlags.Bool("no-temp", false, "")
	pFlags.StringP("log-file", "l", "", "")
	pFlags.StringP("verbose", "v", "", "")

	cfgPath = pFlags.StringP("config", "c", "", "")
	svcCommand = pFlags.String("service", "", "")
	svcUser = pFlags.String("service-user", "hostpulse", "")

	RootCmd.SetUsageFunc(func(*cobra.Command) error {
		fmt.Print(monitorHelp)
		os.Exit(1)
		return nil
	})

	viperCfg = viper.New()
	viperCfg.SetConfigType("toml")

	viperCfg.SetDefault("logging.log_level", "error")
	viperCfg.SetDefault("monitoring.retention", "7d")

	// map config fields to CLI args:
	// _ is used to ignore errors to pass linter check
	_ = viperCfg.BindPFlag("logging.log_file", pFlags.Lookup("log-file"))
	_ = viperCfg.BindPFlag("logging.log_level", pFlags.Lookup("verbose"))
	_ = viperCfg.BindPFlag("monitoring.interval", pFlags.Lookup("interval"))
	_ = viperCfg.BindPFlag("monitoring.data_dir", pFlags.Lookup("data-dir"))
	_ = viperCfg.BindPFlag("monitoring.scratch_file", pFlags.Lookup("scratch-file"))
	_ = viperCfg.BindPFlag("monitoring.retention", pFlags.Lookup("retention"))
	_ = viperCfg.BindPFlag("monitoring.disk_paths", pFlags.Lookup("disk-paths"))
	_ = viperCfg.BindPFlag("monitoring.net_interfaces", pFlags.Lookup("net-interfaces"))
	_ = viperCfg.BindPFlag("monitoring.disk_io_devices", pFlags.Lookup("disk-io-devices"))
	_ = viperCfg.BindPFlag("monitoring.temp_sensors", pFlags.Lookup("temp-sensors"))
	_ = viperCfg.BindPFlag("monitoring.temp_disabled", pFlags.Lookup("no-temp"))

	// map ENV variables
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
	if svcCommand != nil && *svcCommand != "" {
		err := servicemanagement.HandleSvcCommand(*svcCommand, *cfgPath, svcUser)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	err := tryDecodeConfig()
	if err != nil {
		log.Fatal(err)
	}

	mLog := logger.NewMemLogger()
	err = cfg.Monitoring.ParseAndValidate(&mLog)
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

	lg := logger.NewLogger("collector", cfg.Logging.LogOutput, cfg.Logging.LogLevel)
	mLog.Flush(lg)

	st, err := store.New(&cfg.Monitoring, lg.Fork("store"))
	if err != nil {
		log.Fatal(err)
	}

	s := collector.NewSampler(&cfg.Monitoring, lg, metrics.NewProbe(), st)
	go watchFlushSignal(s, lg)

	if !service.Interactive() {
		if err = servicemanagement.RunAsService(s, *cfgPath); err != nil {
			log.Fatal(err)
		}
		return
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

	if err = s.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
