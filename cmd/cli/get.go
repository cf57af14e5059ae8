package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/bootstrap"
	"github.com/yourusername/ytmp3-go/internal/domain"
)

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a video or playlist as MP3 in this process",
	Long: `Resolve, download and convert a YouTube video, or every video of a playlist,
without a server. Prompts for the URL and output folder when omitted.
Ctrl-C stops after the current step and removes partial files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "Output folder (prompted when omitted)")
	getCmd.Flags().StringP("bitrate", "b", "", "MP3 bitrate, e.g. 192k (default from config)")
	getCmd.Flags().Bool("file-logs", false, "Also write categorised JSON logs to logging.logs_dir")
}

func runGet(cmd *cobra.Command, args []string) error {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var url string
	if len(args) > 0 {
		url = args[0]
	} else {
		url = prompt(in, out, "YouTube URL: ", "")
	}
	if err := domain.ValidateURL(url); err != nil {
		return err
	}

	folder, _ := cmd.Flags().GetString("output")
	if folder == "" {
		folder = prompt(in, out, fmt.Sprintf("Output folder [%s]: ", config.Download.OutputDir), config.Download.OutputDir)
	}

	if bitrate, _ := cmd.Flags().GetString("bitrate"); bitrate != "" {
		config.Transcode.Bitrate = bitrate
	}
	fileLogs, _ := cmd.Flags().GetBool("file-logs")

	services, err := bootstrap.New(config, bootstrap.Options{FileLogs: fileLogs})
	if err != nil {
		return err
	}
	defer services.Close()

	events, unsubscribe := services.Queue.Subscribe(256)
	defer unsubscribe()

	if err := services.Queue.Start(context.Background()); err != nil {
		return err
	}
	defer services.Queue.Stop()

	job, err := services.Queue.AddJob(url, folder)
	if err != nil {
		return err
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	return followJob(out, job.ID, events, interrupts, services.Queue)
}

// jobController is the part of the queue followJob needs
type jobController interface {
	CancelCurrent() bool
	GetJob(id string) (*domain.Job, error)
}

// followJob prints events of jobID until it finishes. The first interrupt
// requests a cooperative stop.
func followJob(out io.Writer, jobID string, events <-chan domain.Event, interrupts <-chan os.Signal, queue jobController) error {
	printer := newProgressPrinter(out)
	stopping := false

	for {
		select {
		case <-interrupts:
			if stopping {
				continue
			}
			stopping = true
			printer.Finish()
			fmt.Fprintln(out, "Stopping...")
			queue.CancelCurrent()

		case e, ok := <-events:
			if !ok {
				return errors.New("event stream closed")
			}
			if e.JobID != jobID {
				continue
			}
			printer.Print(e)
			if e.Phase != domain.PhaseJobDone {
				continue
			}

			job, err := queue.GetJob(jobID)
			if err != nil {
				return err
			}
			if job.Status == domain.JobFailed {
				return errors.New(job.ErrorMessage)
			}
			return nil
		}
	}
}

// prompt reads one line from in, returning def for an empty answer
func prompt(in *bufio.Reader, out io.Writer, question, def string) string {
	fmt.Fprint(out, question)
	line, _ := in.ReadString('\n')
	if answer := strings.TrimSpace(line); answer != "" {
		return answer
	}
	return def
}
