package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytmp3-go/api/handlers"
	"github.com/yourusername/ytmp3-go/internal/domain"
)

var (
	serverURL   string
	configPath  string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:          "ytmp3",
		Short:        "ytmp3 - download YouTube videos and playlists as MP3",
		Long:         `Fetch the audio stream of a YouTube video or every video of a playlist and convert it to MP3.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./configs, ~/.ytmp3, /etc/ytmp3)")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(configCmd)

	submitCmd.Flags().StringP("output", "o", "", "Destination folder on the server (default: server's output_dir)")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().StringP("kind", "k", "", "Filter by kind (single, playlist)")
	progressCmd.Flags().BoolP("watch", "w", false, "Keep polling until the running job finishes")
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var submitCmd = &cobra.Command{
	Use:   "submit [url]",
	Short: "Queue a video or playlist on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		folder, _ := cmd.Flags().GetString("output")

		var job domain.Job
		if err := newClient(serverURL).post("/api/v1/jobs", handlers.AddJobRequest{URL: args[0], Folder: folder}, &job); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Job queued\nID:     %s\nKind:   %s\nStatus: %s\n", job.ID, job.Kind, job.Status)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		status, _ := cmd.Flags().GetString("status")
		kind, _ := cmd.Flags().GetString("kind")

		path := "/api/v1/jobs?status=" + status + "&kind=" + kind
		var jobs []domain.Job
		if err := newClient(serverURL).get(path, &jobs); err != nil {
			return err
		}

		printJobs(cmd.OutOrStdout(), jobs)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show a job and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var detail handlers.JobDetail
		if err := newClient(serverURL).get("/api/v1/jobs/"+args[0], &detail); err != nil {
			return err
		}

		printJobDetail(cmd.OutOrStdout(), detail)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Stop a running job or drop a queued one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		if err := newClient(serverURL).post("/api/v1/jobs/"+args[0]+"/cancel", nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stop requested")
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop whatever job is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		if err := newClient(serverURL).post("/api/v1/stop", nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stop requested")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var stats domain.JobStats
		if err := newClient(serverURL).get("/api/v1/jobs/stats", &stats); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Job Statistics:")
		fmt.Fprintf(out, "  Total:     %d\n", stats.Total)
		fmt.Fprintf(out, "  Queued:    %d\n", stats.Queued)
		fmt.Fprintf(out, "  Running:   %d\n", stats.Running)
		fmt.Fprintf(out, "  Completed: %d\n", stats.Completed)
		fmt.Fprintf(out, "  Failed:    %d\n", stats.Failed)
		fmt.Fprintf(out, "  Cancelled: %d\n", stats.Cancelled)
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show what the server is doing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		watch, _ := cmd.Flags().GetBool("watch")
		client := newClient(serverURL)
		printer := newProgressPrinter(cmd.OutOrStdout())

		for {
			var progress handlers.ProgressResponse
			if err := client.get("/api/v1/progress", &progress); err != nil {
				return err
			}
			if progress.Event == nil {
				fmt.Fprintln(cmd.OutOrStdout(), progress.Status)
				return nil
			}
			printer.Print(*progress.Event)
			if !watch || !progress.Running {
				printer.Finish()
				return nil
			}
			time.Sleep(500 * time.Millisecond)
		}
	},
}

func printJobs(w io.Writer, jobs []domain.Job) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tDONE\tTITLE/URL\tCREATED")
	for _, j := range jobs {
		label := j.Title
		if label == "" {
			label = j.URL
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			truncate(j.ID, 8),
			j.Kind,
			j.Status,
			j.Completed,
			j.Total,
			truncate(label, 40),
			j.CreatedAt.Format(time.DateTime))
	}
	tw.Flush()
}

func printJobDetail(w io.Writer, d handlers.JobDetail) {
	if d.Job == nil {
		fmt.Fprintln(w, "Job not found")
		return
	}
	fmt.Fprintf(w, "Job Details:\n")
	fmt.Fprintf(w, "  ID:      %s\n", d.ID)
	fmt.Fprintf(w, "  URL:     %s\n", d.URL)
	fmt.Fprintf(w, "  Kind:    %s\n", d.Kind)
	fmt.Fprintf(w, "  Status:  %s\n", d.Status)
	fmt.Fprintf(w, "  Folder:  %s\n", d.Folder)
	if d.Title != "" {
		fmt.Fprintf(w, "  Title:   %s\n", d.Title)
	}
	fmt.Fprintf(w, "  Items:   %d completed, %d failed of %d\n", d.Completed, d.Failed, d.Total)
	if d.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:   %s\n", d.ErrorMessage)
	}

	for _, it := range d.Items {
		line := fmt.Sprintf("  %3d. [%s] ", it.Index, it.Outcome)
		switch {
		case it.OutputPath != "":
			line += it.OutputPath
		case it.Title != "":
			line += it.Title
		default:
			line += it.URL
		}
		if it.Reason != "" {
			line += " (" + it.Reason + ")"
		}
		if it.PublishURL != "" {
			line += " -> " + it.PublishURL
		}
		fmt.Fprintln(w, line)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
