package servicemanagement

import (
	"context"
	"log"
	"path/filepath"

	"github.com/kardianos/service"

	"github.com/hostpulse/hostpulse/collector"
	hpshare "github.com/hostpulse/hostpulse/share"
)

var svcConfig = &service.Config{
	Name:        "hostpulsed",
	DisplayName: "HostPulse Collector",
	Description: "Samples host telemetry into the hostpulse data directory.",
}

func HandleSvcCommand(svcCommand string, configPath string, user *string) error {
	svc, err := getService(nil, configPath, user)
	if err != nil {
		return err
	}

	return hpshare.HandleServiceCommand(svc, svcCommand)
}

func RunAsService(s *collector.Sampler, configPath string) error {
	svc, err := getService(s, configPath, nil)
	if err != nil {
		return err
	}

	return svc.Run()
}

func getService(s *collector.Sampler, configPath string, user *string) (service.Service, error) {
	if configPath != "" {
		absConfigPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, err
		}
		svcConfig.Arguments = []string{"-c", absConfigPath}
	}
	if user != nil {
		svcConfig.UserName = *user
	}
	return service.New(&serviceWrapper{sampler: s}, svcConfig)
}

type serviceWrapper struct {
	sampler *collector.Sampler
	cancel  context.CancelFunc
	done    chan struct{}
}

func (w *serviceWrapper) Start(service.Service) error {
	if w.sampler == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		if err := w.sampler.Run(ctx); err != nil {
			log.Println(err)
		}
	}()
	return nil
}

// Stop waits for the run loop to return so the final flush lands before
// the service manager considers the process stopped.
func (w *serviceWrapper) Stop(service.Service) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	<-w.done
	return nil
}
