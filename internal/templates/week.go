package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/mauv0809/rally/internal/schedule"
)

const dateParam = "2006-01-02"

// WeekPage renders the weekly schedule of userID as a full HTML page.
func WeekPage(userID string, week schedule.Week) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Weekly schedule</title></head><body class="bg-gray-50">`); err != nil {
			return err
		}
		if err := WeekGrid(userID, week).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// WeekGrid renders only the seven day columns, for partial updates after an action.
func WeekGrid(userID string, week schedule.Week) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildWeekHTML(userID, week))
		return err
	})
}

func buildWeekHTML(userID string, week schedule.Week) string {
	var builder strings.Builder
	loc := week.Window.Location()

	builder.WriteString(`<div id="week" class="space-y-4">`)
	builder.WriteString(`<nav class="flex items-center justify-between">`)
	builder.WriteString(fmt.Sprintf(`<a href="/week.html?date=%s">&larr; Previous</a>`, week.Window.Previous().Start().Format(dateParam)))
	builder.WriteString(fmt.Sprintf(`<h1 class="text-xl font-semibold">%s &ndash; %s</h1>`,
		week.Window[0].Format("Mon 02 Jan"), week.Window[6].Format("Mon 02 Jan 2006")))
	builder.WriteString(fmt.Sprintf(`<a href="/week.html?date=%s">Next &rarr;</a>`, week.Window.Next().Start().Format(dateParam)))
	builder.WriteString(`</nav>`)

	if n := len(week.Malformed); n > 0 {
		builder.WriteString(`<div class="rounded border border-yellow-300 bg-yellow-50 p-3 text-sm" role="alert">`)
		builder.WriteString(fmt.Sprintf(`%d match(es) could not be placed because their time is unreadable:<ul>`, n))
		for _, bad := range week.Malformed {
			builder.WriteString(fmt.Sprintf(`<li>%s (%s)</li>`, templ.EscapeString(bad.MatchID), templ.EscapeString(bad.ScheduledAt)))
		}
		builder.WriteString(`</ul></div>`)
	}

	builder.WriteString(`<div class="grid grid-cols-7 gap-2">`)
	for _, day := range week.Days {
		builder.WriteString(fmt.Sprintf(`<section class="day" data-date="%s">`, day.Date.Format(dateParam)))
		builder.WriteString(fmt.Sprintf(`<h2 class="text-sm font-medium">%s</h2>`, day.Date.Format("Monday 02")))
		if len(day.Matches) == 0 {
			builder.WriteString(`<p class="text-xs text-gray-400">No matches</p>`)
		}
		for _, m := range schedule.SortByTime(day.Matches, loc) {
			builder.WriteString(buildMatchCardHTML(userID, m, week))
		}
		builder.WriteString(`</section>`)
	}
	builder.WriteString(`</div></div>`)
	return builder.String()
}

func buildMatchCardHTML(userID string, m schedule.MatchRecord, week schedule.Week) string {
	var builder strings.Builder
	loc := week.Window.Location()

	class := schedule.ClassOf(m.Status)
	builder.WriteString(fmt.Sprintf(`<article class="match match-%s" data-id="%s">`, class, templ.EscapeString(m.ID)))

	timeStr := ""
	if start, err := m.StartTime(loc); err == nil {
		timeStr = start.Format("15:04")
	}
	opponent := m.Opponent()
	if opponent == userID {
		opponent = m.Requester()
	}
	builder.WriteString(fmt.Sprintf(`<div class="font-medium">%s vs %s</div>`, timeStr, templ.EscapeString(opponent)))
	if m.Location != "" {
		builder.WriteString(fmt.Sprintf(`<div class="text-xs">%s</div>`, templ.EscapeString(m.Location)))
	}

	status := m.NormalizedStatus()
	if status == "" {
		status = "unknown"
	}
	builder.WriteString(fmt.Sprintf(`<span class="badge">%s</span>`, templ.EscapeString(status)))
	if m.Type() == schedule.MatchTypeDoubles {
		builder.WriteString(`<span class="badge">doubles</span>`)
	}
	if m.IsPractice {
		builder.WriteString(`<span class="badge">practice</span>`)
	}
	if m.Notes != "" {
		builder.WriteString(fmt.Sprintf(`<p class="text-xs italic">%s</p>`, templ.EscapeString(m.Notes)))
	}

	if schedule.CanRespond(m, userID) {
		ref := week.Window.Start().Format(dateParam)
		for _, action := range []string{"accept", "reject"} {
			builder.WriteString(fmt.Sprintf(
				`<form method="post" action="/matches/%s/%s?date=%s"><button type="submit">%s</button></form>`,
				templ.EscapeString(url.PathEscape(m.ID)), action, ref, strings.ToUpper(action[:1])+action[1:]))
		}
	}
	builder.WriteString(`</article>`)
	return builder.String()
}
