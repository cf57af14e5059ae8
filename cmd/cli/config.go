package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath()
		if len(args) > 0 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "output_dir:       %s\n", config.Download.OutputDir)
		fmt.Fprintf(out, "ytdlp_binary:     %s\n", config.Source.YTDLPBinary)
		fmt.Fprintf(out, "playlist_backend: %s\n", config.Source.PlaylistBackend)
		fmt.Fprintf(out, "ffmpeg_binary:    %s\n", config.Transcode.FFmpegBinary)
		fmt.Fprintf(out, "bitrate:          %s\n", config.Transcode.Bitrate)
		fmt.Fprintf(out, "server:           %s:%d\n", config.Server.Host, config.Server.Port)
		fmt.Fprintf(out, "publish:          %v\n", config.Publish.Enabled)
		fmt.Fprintf(out, "logs_dir:         %s\n", config.Logging.LogsDir)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func defaultConfigPath() string {
	if configPath != "" {
		return configPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("configs", "config.yaml")
	}
	return filepath.Join(home, ".ytmp3", "config.yaml")
}
