package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lanbitou/lanbitou-in-go/pkg/config"
)

// configurationWatchCmd represents the configuration watch command
var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the config file and validate it on change",
	Long: `Watch the configuration file and re-validate it whenever it changes.

Useful while editing the config file: every write is parsed and validated
immediately, so mistakes surface before the server is restarted.

Example:
  lanbitouctl configuration watch`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchConfiguration(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}

func watchConfiguration() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	filename := cfg.ConfigFilePath()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for configuration changes\n", filename)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Printf("[%s] File modified, revalidating...\n", time.Now().Format(time.RFC3339))

				if err := config.Reload(); err != nil {
					fmt.Fprintf(os.Stderr, "Error reloading configuration: %v\n", err)
					continue
				}
				if err := config.Get().Validate(); err != nil {
					fmt.Fprintf(os.Stderr, "Configuration is invalid: %v\n", err)
					continue
				}
				fmt.Println("Configuration is valid.")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("Stopping watcher")
			return nil
		}
	}
}
