package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

type sentCommand struct {
	name string
	args []string
}

func newTestNotifier(method string, enabled bool) (*NotificationService, *[]sentCommand) {
	var sent []sentCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, nil)
	n.run = func(name string, args ...string) error {
		sent = append(sent, sentCommand{name: name, args: args})
		return nil
	}
	return n, &sent
}

func TestNotificationService_Send(t *testing.T) {
	n, sent := newTestNotifier("osascript", true)

	assert.NoError(t, n.Send(`Say "hi"`, "done"))
	if assert.Len(t, *sent, 1) {
		assert.Equal(t, "osascript", (*sent)[0].name)
		assert.Equal(t, []string{"-e", `display notification "done" with title "Say \"hi\""`}, (*sent)[0].args)
	}

	n, sent = newTestNotifier("notify-send", true)
	assert.NoError(t, n.Send("Title", "Body"))
	assert.Equal(t, []sentCommand{{name: "notify-send", args: []string{"Title", "Body"}}}, *sent)
}

func TestNotificationService_Disabled(t *testing.T) {
	n, sent := newTestNotifier("notify-send", false)
	assert.NoError(t, n.Send("Title", "Body"))
	assert.Empty(t, *sent)

	n, sent = newTestNotifier("carrier-pigeon", true)
	assert.NoError(t, n.Send("Title", "Body"))
	assert.Empty(t, *sent)
}

func TestNotificationService_SendError(t *testing.T) {
	n, _ := newTestNotifier("notify-send", true)
	n.run = func(string, ...string) error { return errors.New("no display") }

	assert.Error(t, n.Send("Title", "Body"))
}

func TestNotificationService_JobHooks(t *testing.T) {
	n, sent := newTestNotifier("notify-send", true)

	single := &domain.Job{Kind: domain.KindSingle, URL: "https://youtu.be/abc", Status: domain.JobCompleted}
	n.NotifyJobStarted(single)
	n.NotifyJobFinished(single)

	item := domain.NewBatchItem("https://youtu.be/abc", 2, 5)
	item.Title = "Song"
	n.NotifyItemFinished(domain.CompletedResult(item, "/tmp/Song.mp3"))

	playlist := &domain.Job{Kind: domain.KindPlaylist, Status: domain.JobCancelled, Completed: 2, Total: 5}
	n.NotifyJobFinished(playlist)

	titles := make([]string, 0, len(*sent))
	for _, c := range *sent {
		titles = append(titles, c.args[0]+": "+c.args[1])
	}
	assert.Equal(t, []string{
		"Download Started: https://youtu.be/abc",
		"MP3 Ready: 2/5 Song",
		"Playlist Stopped: 2 of 5 completed",
	}, titles)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}
