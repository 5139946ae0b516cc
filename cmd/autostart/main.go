package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/autostart/apps/autostart"
	"github.com/lixenwraith/autostart/config"
	"github.com/lixenwraith/autostart/core"
	"github.com/lixenwraith/autostart/display"
	"github.com/lixenwraith/autostart/gui"
	"github.com/lixenwraith/autostart/input"
	"github.com/lixenwraith/autostart/loader"
	"github.com/lixenwraith/autostart/notification"
	"github.com/lixenwraith/autostart/service"
)

var (
	configFlag = flag.String("config", "autostart.toml", "Configuration file; missing file uses defaults")
	appFlag    = flag.String("app", "", "Application to launch, overrides loader.autostart")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/autostart.log")
)

func main() {
	// Panic Recovery: the display reset hook restores the terminal before the report
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()
	os.Exit(run())
}

// run assembles the platform, launches the boot application and returns the process status
func run() int {
	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *appFlag != "" {
		cfg.Loader.Autostart = *appFlag
	}

	keymap, err := cfg.Keymap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid key bindings: %v\n", err)
		return 1
	}

	hub := service.NewHub()
	inputs := input.NewService(keymap)
	apps := loader.NewService(cfg.ForLoader())

	app := autostart.New(cfg.PollInterval())
	if err := apps.Register(loader.Application{Name: autostart.AppName, Entry: app.Run}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register application: %v\n", err)
		return 1
	}

	services := []service.Service{
		display.NewService(),
		inputs,
		gui.NewService(),
		notification.NewService(cfg.ForNotification()),
		apps,
	}
	for _, svc := range services {
		if err := hub.Register(svc); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register service: %v\n", err)
			return 1
		}
	}

	if err := hub.InitAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize services: %v\n", err)
		return 1
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start services: %v\n", err)
		return 1
	}

	// Termination signals behave like BACK so the application tears down normally
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("received %v, requesting exit", sig)
			cancel()
			inputs.Emit(input.KeyBack)
		case <-ctx.Done():
		}
	}()

	status, err := apps.Autostart(ctx, nil)
	hub.StopAll()

	switch {
	case errors.Is(err, context.Canceled):
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "Autostart failed: %v\n", err)
		if status == 0 {
			status = 1
		}
	}
	return status
}
