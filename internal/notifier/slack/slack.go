package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return s.channelID, "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallbackText(message), false),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendWeeklyDigest(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error) {
	msg := s.formatWeeklyDigest(userID, week)
	return s.sendMessage(ctx, msg, dryRun)
}

// FormatWeeklyDigest returns the Block Kit message of the digest.
func (s *Notifier) FormatWeeklyDigest(userID string, week schedule.Week) (any, error) {
	return s.formatWeeklyDigest(userID, week), nil
}

// formatWeeklyDigest creates one section per day that has matches, using Block Kit.
func (s *Notifier) formatWeeklyDigest(userID string, week schedule.Week) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	first, last := week.Window[0], week.Window[6]
	headerText := slack.NewTextBlockObject("plain_text",
		fmt.Sprintf("🎾 Your week: %s - %s", first.Format("Mon 02 Jan"), last.Format("Mon 02 Jan")), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if week.Count() == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches this week. Time to challenge someone!", true, false), nil, nil))
	}

	loc := week.Window.Location()
	pending := 0
	for _, day := range week.Days {
		if len(day.Matches) == 0 {
			continue
		}
		lines := []string{fmt.Sprintf("*%s*", day.Date.Format("Monday 02 Jan"))}
		for _, m := range schedule.SortByTime(day.Matches, loc) {
			if schedule.CanRespond(m, userID) {
				pending++
			}
			lines = append(lines, formatMatchLine(userID, m, loc))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
	}

	// Context - For simpler, single-line info.
	var contextElements []slack.MixedElement
	if pending > 0 {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("%d %s waiting for your answer.", pending, plural(pending, "match", "matches")), true, false))
	}
	if n := len(week.Malformed); n > 0 {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("%d %s with an unreadable time left out.", n, plural(n, "match", "matches")), true, false))
	}
	if len(contextElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) SendMatchEvent(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error {
	msg := s.formatMatchEvent(event)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

// formatMatchEvent creates a single section message for a match event.
func (s *Notifier) formatMatchEvent(event pubsub.MatchEvent) slack.Message {
	var text string
	switch event.Type {
	case pubsub.EventMatchAccepted:
		text = fmt.Sprintf("✅ %s accepted match %s", event.PlayerID, event.MatchID)
	case pubsub.EventMatchRejected:
		text = fmt.Sprintf("❌ %s declined match %s", event.PlayerID, event.MatchID)
	case pubsub.EventMatchCreated:
		text = fmt.Sprintf("🎾 %s proposed match %s", event.PlayerID, event.MatchID)
	default:
		text = fmt.Sprintf("Match %s: %s", event.MatchID, event.Type)
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil),
	}
	var details []string
	if event.ScheduledAt != "" {
		details = append(details, "When: "+event.ScheduledAt)
	}
	if event.Location != "" {
		details = append(details, "Where: "+event.Location)
	}
	if len(details) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", strings.Join(details, " | "), true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

func formatMatchLine(userID string, m schedule.MatchRecord, loc *time.Location) string {
	opponent := m.Opponent()
	if opponent == userID {
		opponent = m.Requester()
	}
	timeStr := "--:--"
	if start, err := m.StartTime(loc); err == nil {
		timeStr = start.Format("15:04")
	}

	line := fmt.Sprintf("• %s vs %s", timeStr, opponent)
	if m.Location != "" {
		line += " @ " + m.Location
	}
	var tags []string
	if status := m.NormalizedStatus(); status != "" {
		tags = append(tags, status)
	}
	if m.Type() == schedule.MatchTypeDoubles {
		tags = append(tags, "doubles")
	}
	if m.IsPractice {
		tags = append(tags, "practice")
	}
	if len(tags) > 0 {
		line += " _(" + strings.Join(tags, ", ") + ")_"
	}
	return line
}

// fallbackText is shown in notifications where blocks are not rendered.
func fallbackText(message slack.Message) string {
	for _, b := range message.Blocks.BlockSet {
		switch block := b.(type) {
		case *slack.HeaderBlock:
			if block.Text != nil {
				return block.Text.Text
			}
		case *slack.SectionBlock:
			if block.Text != nil {
				return block.Text.Text
			}
		}
	}
	return "Weekly schedule"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
