// Package ui is the desktop window: URL and folder entries, a progress
// bar with speed and ETA, start and stop buttons and an activity log.
package ui

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

const (
	eventBuffer     = 256
	maxActivityRows = 500
)

// Controller is the worker the window drives
type Controller interface {
	AddJob(url, folder string) (*domain.Job, error)
	CancelCurrent() bool
	Subscribe(buffer int) (<-chan domain.Event, func())
}

// Window binds the widgets to a Controller. All widget updates happen on
// the fyne goroutine via fyne.Do.
type Window struct {
	window fyne.Window
	ctrl   Controller
	logger *zap.Logger

	urlEntry     *widget.Entry
	folderEntry  *widget.Entry
	browseButton *widget.Button
	startButton  *widget.Button
	stopButton   *widget.Button
	progressBar  *widget.ProgressBar
	titleLabel   *widget.Label
	speedLabel   *widget.Label
	statusLabel  *widget.Label
	activityList *widget.List

	activity    []string
	currentJob  string
	unsubscribe func()
}

// NewWindow builds the UI into win and starts listening for events
func NewWindow(win fyne.Window, ctrl Controller, defaultFolder string, logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Window{
		window: win,
		ctrl:   ctrl,
		logger: logger,
	}

	w.urlEntry = widget.NewEntry()
	w.urlEntry.SetPlaceHolder("https://www.youtube.com/watch?v=... or playlist URL")
	w.urlEntry.OnSubmitted = func(string) { w.start() }

	w.folderEntry = widget.NewEntry()
	w.folderEntry.SetText(defaultFolder)

	w.browseButton = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), w.browse)
	w.startButton = widget.NewButtonWithIcon("Download MP3", theme.DownloadIcon(), w.start)
	w.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), w.stop)
	w.stopButton.Disable()

	w.progressBar = widget.NewProgressBar()
	w.titleLabel = widget.NewLabel("")
	w.titleLabel.Truncation = fyne.TextTruncateEllipsis
	w.speedLabel = widget.NewLabel("")
	w.statusLabel = widget.NewLabel("Ready")

	w.activityList = widget.NewList(
		func() int { return len(w.activity) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(w.activity[id])
		},
	)

	form := widget.NewForm(
		widget.NewFormItem("Video URL", w.urlEntry),
		widget.NewFormItem("Save to", container.NewBorder(nil, nil, nil, w.browseButton, w.folderEntry)),
	)

	top := container.NewVBox(
		form,
		container.NewCenter(container.NewHBox(w.startButton, w.stopButton)),
		widget.NewSeparator(),
		w.titleLabel,
		w.progressBar,
		container.NewHBox(w.speedLabel),
		w.statusLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Activity", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)

	win.SetContent(container.NewBorder(top, nil, nil, nil, w.activityList))

	events, unsubscribe := ctrl.Subscribe(eventBuffer)
	w.unsubscribe = unsubscribe
	go w.pump(events)

	win.SetOnClosed(w.close)
	return w
}

func (w *Window) pump(events <-chan domain.Event) {
	for e := range events {
		fyne.Do(func() { w.apply(e) })
	}
}

func (w *Window) apply(e domain.Event) {
	if e.JobID != w.currentJob {
		return
	}

	v := describe(e)
	if v.Title != "" {
		w.titleLabel.SetText(v.Title)
	}
	w.progressBar.SetValue(v.Progress)
	w.speedLabel.SetText(v.Speed)
	w.statusLabel.SetText(v.Status)
	if v.LogLine != "" {
		w.appendActivity(v.LogLine)
	}
	if v.Finished {
		w.setRunning(false)
		w.currentJob = ""
	}
}

func (w *Window) start() {
	url := strings.TrimSpace(w.urlEntry.Text)
	if err := domain.ValidateURL(url); err != nil {
		dialog.ShowError(errors.New("please enter a valid YouTube URL"), w.window)
		return
	}

	folder := strings.TrimSpace(w.folderEntry.Text)
	if folder == "" {
		dialog.ShowError(errors.New("please choose an output folder"), w.window)
		return
	}

	job, err := w.ctrl.AddJob(url, folder)
	if err != nil {
		w.logger.Error("Failed to queue job", zap.String("url", url), zap.Error(err))
		dialog.ShowError(err, w.window)
		return
	}

	w.currentJob = job.ID
	w.titleLabel.SetText("")
	w.progressBar.SetValue(0)
	w.speedLabel.SetText("")
	w.statusLabel.SetText("Starting...")
	w.setRunning(true)

	label := "Started: " + url
	if job.Kind == domain.KindPlaylist {
		label = "Started playlist: " + url
	}
	w.appendActivity(logLine(job.CreatedAt, label))
}

func (w *Window) stop() {
	if w.ctrl.CancelCurrent() {
		w.statusLabel.SetText("Stopping...")
		w.stopButton.Disable()
	}
}

func (w *Window) browse() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		w.folderEntry.SetText(uri.Path())
	}, w.window)
}

func (w *Window) setRunning(running bool) {
	for _, d := range []fyne.Disableable{w.urlEntry, w.folderEntry, w.browseButton, w.startButton} {
		if running {
			d.Disable()
		} else {
			d.Enable()
		}
	}
	if running {
		w.stopButton.Enable()
	} else {
		w.stopButton.Disable()
	}
}

func (w *Window) appendActivity(line string) {
	w.activity = append(w.activity, line)
	if len(w.activity) > maxActivityRows {
		w.activity = w.activity[len(w.activity)-maxActivityRows:]
	}
	w.activityList.Refresh()
	w.activityList.ScrollToBottom()
}

// close stops the running job and detaches from the event stream
func (w *Window) close() {
	w.ctrl.CancelCurrent()
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}
