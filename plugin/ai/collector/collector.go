// Package collector gathers a windowed, read-only summary of one user's data
// across every tracker domain.
package collector

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/service/tracker"
	"github.com/hrygo/eidos/store"
)

const (
	// DefaultDays is the collection window used when none is given.
	DefaultDays = 30

	recentSleepLimit    = 7
	upcomingEventsLimit = 10
	topCategoriesLimit  = 5
	topTopicsLimit      = 10
	minTopicLength      = 5
)

// Store is the read-only slice of the store the collector needs.
type Store interface {
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	ListSleepRecords(ctx context.Context, find *store.FindSleepRecord) ([]*store.SleepRecord, error)
	ListHabits(ctx context.Context, find *store.FindHabit) ([]*store.Habit, error)
	ListHabitLogs(ctx context.Context, find *store.FindHabitLog) ([]*store.HabitLog, error)
	ListTransactions(ctx context.Context, find *store.FindTransaction) ([]*store.Transaction, error)
	ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error)
	ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error)
	ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error)
	ListInstalledModules(ctx context.Context, userID int32, enabledOnly bool) ([]*store.InstalledModule, error)
}

// Collector builds CollectedData snapshots.
type Collector struct {
	store Store
	now   func() time.Time
}

// NewCollector creates a collector reading from store.
func NewCollector(store Store) *Collector {
	return &Collector{store: store, now: time.Now}
}

// Collect summarises the last days of the user's data. A non-positive days
// falls back to DefaultDays. Domains are read concurrently.
func (c *Collector) Collect(ctx context.Context, userID int32, days int) (*CollectedData, error) {
	if days <= 0 {
		days = DefaultDays
	}
	now := c.now().UTC()
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	data := &CollectedData{
		UserID:      userID,
		Days:        days,
		WindowStart: start,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Profile, err = c.collectProfile(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Sleep, err = c.collectSleep(gctx, userID, start)
		return err
	})
	g.Go(func() (err error) {
		data.Habits, err = c.collectHabits(gctx, userID, start, days)
		return err
	})
	g.Go(func() (err error) {
		data.Finance, err = c.collectFinance(gctx, userID, start)
		return err
	})
	g.Go(func() (err error) {
		data.Calendar, err = c.collectCalendar(gctx, userID, start)
		return err
	})
	g.Go(func() (err error) {
		data.Conversations, err = c.collectConversations(gctx, userID, start)
		return err
	})
	g.Go(func() (err error) {
		data.Modules, err = c.collectModules(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("collected user data",
		slog.Int("user_id", int(userID)),
		slog.Int("days", days),
		slog.Bool("sleep", data.Sleep.Available),
		slog.Bool("habits", data.Habits.Available),
		slog.Bool("finance", data.Finance.Available),
		slog.Bool("calendar", data.Calendar.Available),
		slog.Bool("conversations", data.Conversations.Available),
	)
	return data, nil
}

func (c *Collector) collectProfile(ctx context.Context, userID int32) (Profile, error) {
	user, err := c.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return Profile{}, errors.Store("failed to get user", err)
	}
	if user == nil {
		return Profile{}, nil
	}
	name := user.Nickname
	if name == "" {
		name = user.Username
	}
	return Profile{
		Name:      name,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: time.Unix(user.CreatedTs, 0).UTC(),
	}, nil
}

func (c *Collector) collectSleep(ctx context.Context, userID int32, start time.Time) (SleepSummary, error) {
	after := start.Unix()
	records, err := c.store.ListSleepRecords(ctx, &store.FindSleepRecord{
		UserID:       &userID,
		SleepTsAfter: &after,
	})
	if err != nil {
		return SleepSummary{}, errors.Store("failed to list sleep records", err)
	}
	if len(records) == 0 {
		return SleepSummary{}, nil
	}

	var totalDuration float64
	var totalQuality int32
	for _, r := range records {
		totalDuration += r.Duration
		totalQuality += r.Quality
	}
	n := float64(len(records))
	summary := SleepSummary{
		Available:    true,
		RecordsCount: len(records),
		AvgDuration:  totalDuration / n,
		AvgQuality:   float64(totalQuality) / n,
	}
	// Records arrive newest first.
	for i, r := range records {
		if i == recentSleepLimit {
			break
		}
		summary.Recent = append(summary.Recent, SleepEntry{
			Date:     time.Unix(r.SleepTs, 0).UTC().Format(time.DateOnly),
			Duration: r.Duration,
			Quality:  r.Quality,
		})
	}
	return summary, nil
}

func (c *Collector) collectHabits(ctx context.Context, userID int32, start time.Time, days int) (HabitsSummary, error) {
	habits, err := c.store.ListHabits(ctx, &store.FindHabit{UserID: &userID})
	if err != nil {
		return HabitsSummary{}, errors.Store("failed to list habits", err)
	}
	if len(habits) == 0 {
		return HabitsSummary{}, nil
	}
	after := start.Unix()
	logs, err := c.store.ListHabitLogs(ctx, &store.FindHabitLog{
		UserID:           &userID,
		CompletedTsAfter: &after,
	})
	if err != nil {
		return HabitsSummary{}, errors.Store("failed to list habit logs", err)
	}

	counts := make(map[int32]int, len(habits))
	for _, l := range logs {
		counts[l.HabitID]++
	}
	summary := HabitsSummary{
		Available:   true,
		HabitsCount: len(habits),
		TotalLogs:   len(logs),
	}
	for _, h := range habits {
		completed := counts[h.ID]
		expected := expectedCompletions(h.Frequency, days)
		rate := 0.0
		if expected > 0 {
			rate = float64(completed) / float64(expected)
		}
		summary.Stats = append(summary.Stats, HabitStat{
			Name:           h.Name,
			CompletionRate: rate,
			TotalLogs:      completed,
		})
	}
	return summary, nil
}

// expectedCompletions is how many logs a habit of this frequency should
// accumulate over days.
func expectedCompletions(frequency store.HabitFrequency, days int) int {
	switch frequency {
	case store.HabitFrequencyDaily:
		return days
	case store.HabitFrequencyWeekly:
		return days / 7
	default:
		return days / 30
	}
}

func (c *Collector) collectFinance(ctx context.Context, userID int32, start time.Time) (FinanceSummary, error) {
	after := start.Unix()
	list, err := c.store.ListTransactions(ctx, &store.FindTransaction{
		UserID:  &userID,
		TsAfter: &after,
	})
	if err != nil {
		return FinanceSummary{}, errors.Store("failed to list transactions", err)
	}
	if len(list) == 0 {
		return FinanceSummary{}, nil
	}

	summary := FinanceSummary{
		Available:         true,
		TransactionsCount: len(list),
	}
	for _, t := range list {
		switch t.Type {
		case store.TransactionTypeIncome:
			summary.TotalIncome += t.Amount
		case store.TransactionTypeExpense:
			summary.TotalExpenses += t.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	for _, ca := range tracker.TopExpenseCategories(list, topCategoriesLimit) {
		summary.TopCategories = append(summary.TopCategories, CategoryAmount{
			Category: ca.Category,
			Amount:   ca.Amount,
		})
	}
	return summary, nil
}

// eventKeywords classify calendar titles; the first matching type wins.
var eventKeywords = []struct {
	eventType string
	words     []string
}{
	{EventTypeMeetings, []string{"встреча", "meeting", "созвон"}},
	{EventTypeWork, []string{"работа", "work", "задача"}},
	{EventTypeFitness, []string{"спорт", "тренировка", "gym"}},
}

// ClassifyEvent returns the event type of a calendar title.
func ClassifyEvent(title string) string {
	lower := strings.ToLower(title)
	for _, k := range eventKeywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.eventType
			}
		}
	}
	return EventTypeOther
}

func (c *Collector) collectCalendar(ctx context.Context, userID int32, start time.Time) (CalendarSummary, error) {
	after := start.Unix()
	events, err := c.store.ListCalendarEvents(ctx, &store.FindCalendarEvent{
		UserID:       &userID,
		StartTsAfter: &after,
	})
	if err != nil {
		return CalendarSummary{}, errors.Store("failed to list calendar events", err)
	}
	if len(events) == 0 {
		return CalendarSummary{}, nil
	}

	summary := CalendarSummary{
		Available:   true,
		EventsCount: len(events),
		EventTypes:  map[string]int{},
	}
	// Events arrive ordered by start time.
	for i, e := range events {
		summary.EventTypes[ClassifyEvent(e.Title)]++
		if i < upcomingEventsLimit {
			summary.Upcoming = append(summary.Upcoming, EventEntry{
				Title:       e.Title,
				Start:       time.Unix(e.StartTs, 0).UTC(),
				Description: e.Description,
			})
		}
	}
	return summary, nil
}

func (c *Collector) collectConversations(ctx context.Context, userID int32, start time.Time) (ConversationSummary, error) {
	after := start.Unix()
	conversations, err := c.store.ListConversations(ctx, &store.FindConversation{
		UserID:         &userID,
		CreatedTsAfter: &after,
	})
	if err != nil {
		return ConversationSummary{}, errors.Store("failed to list conversations", err)
	}
	if len(conversations) == 0 {
		return ConversationSummary{}, nil
	}
	messages, err := c.store.ListChatMessages(ctx, &store.FindChatMessage{
		UserID:         &userID,
		CreatedTsAfter: &after,
	})
	if err != nil {
		return ConversationSummary{}, errors.Store("failed to list chat messages", err)
	}

	return ConversationSummary{
		Available:          true,
		ConversationsCount: len(conversations),
		MessagesCount:      len(messages),
		TopTopics:          TopTopics(messages, topTopicsLimit),
	}, nil
}

// TopTopics counts lower-cased whitespace tokens longer than four characters
// in user messages and returns the k most frequent. Ties keep first-seen order.
func TopTopics(messages []*store.ChatMessage, k int) []TopicCount {
	topics := []TopicCount{}
	index := map[string]int{}
	for _, m := range messages {
		if m.Role != store.ChatMessageRoleUser {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(m.Content)) {
			if len([]rune(word)) < minTopicLength {
				continue
			}
			i, ok := index[word]
			if !ok {
				i = len(topics)
				index[word] = i
				topics = append(topics, TopicCount{Word: word})
			}
			topics[i].Count++
		}
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Count > topics[j].Count
	})
	if len(topics) > k {
		topics = topics[:k]
	}
	return topics
}

func (c *Collector) collectModules(ctx context.Context, userID int32) (ModulesSummary, error) {
	installed, err := c.store.ListInstalledModules(ctx, userID, false)
	if err != nil {
		return ModulesSummary{}, errors.Store("failed to list installed modules", err)
	}
	summary := ModulesSummary{
		InstalledCount: len(installed),
		Modules:        []ModuleEntry{},
	}
	for _, im := range installed {
		if im.Enabled {
			summary.EnabledCount++
		}
		summary.Modules = append(summary.Modules, ModuleEntry{
			ID:          im.Module.ID,
			Name:        im.Module.Name,
			Description: im.Module.Description,
			Enabled:     im.Enabled,
			Status:      string(im.Module.Status),
		})
	}
	return summary, nil
}
