package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
)

const (
	defaultLogLines = 20
	maxLogLines     = 1000
)

// Logs prints the caller's most recent activity entries.
func (a *App) Logs(ctx context.Context, n int) error {
	events, err := activity.Tail(a.activityLog, n, a.userName())
	if err != nil {
		return a.fail(common.ErrorStorage)
	}
	if len(events) == 0 {
		a.say("No activity recorded.")
		return nil
	}

	for _, ev := range events {
		a.say(ev.Time.Local().Format(time.DateTime) + "  " + ev.Action)
	}
	return nil
}
