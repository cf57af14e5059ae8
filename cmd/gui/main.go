package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/bootstrap"
	"github.com/yourusername/ytmp3-go/internal/ui"
)

var configPath = flag.String("config", "", "Config file (default: ./configs, ~/.ytmp3, /etc/ytmp3)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ytmp3-gui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	services, err := bootstrap.New(config, bootstrap.Options{FileLogs: true})
	if err != nil {
		return err
	}
	defer services.Close()

	if err := services.Queue.Start(context.Background()); err != nil {
		return err
	}
	defer services.Queue.Stop()

	a := fyneapp.NewWithID("com.ytmp3.desktop")
	win := a.NewWindow("YouTube to MP3")
	win.Resize(fyne.NewSize(640, 560))

	ui.NewWindow(win, services.Queue, config.Download.OutputDir, services.Logs.Logger())

	win.ShowAndRun()
	return nil
}
