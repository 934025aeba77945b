package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/obitus-ai/contextd/pkg/app"
)

// program adapts app.Run to the service manager's Start/Stop contract.
type program struct {
	configPath string
	errCh      chan error
}

// Start implements service.Interface. The service manager expects Start to
// return promptly, so the run loop goes to a goroutine.
func (p *program) Start(service.Service) error {
	p.errCh = make(chan error, 1)
	go func() {
		p.errCh <- app.Run(app.RunParams{ConfigPath: p.configPath, Version: version})
	}()
	return nil
}

// Stop implements service.Interface. app.Run exits on the SIGTERM the
// service manager sends; nothing extra to tear down here.
func (p *program) Stop(service.Service) error {
	return nil
}

func serviceCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:       "service <install|uninstall|start|stop|restart|run>",
		Short:     "Manage contextd as a system service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "run"},
		RunE: func(_ *cobra.Command, args []string) error {
			svcConfig := &service.Config{
				Name:        "contextd",
				DisplayName: "contextd conversation context service",
				Description: "Token-bounded conversation context buffers with automatic summarization.",
				Arguments:   []string{"service", "run"},
			}
			if configPath != "" {
				svcConfig.Arguments = append(svcConfig.Arguments, "--config", configPath)
			}

			prg := &program{configPath: configPath}
			svc, err := service.New(prg, svcConfig)
			if err != nil {
				return fmt.Errorf("creating service: %w", err)
			}

			action := args[0]
			if action == "run" {
				return svc.Run()
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("service %s: done\n", action)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	return cmd
}
