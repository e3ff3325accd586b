package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/liliang-cn/chatrelay/internal/domain"
	"github.com/liliang-cn/chatrelay/internal/service"
	"go.uber.org/zap"
)

// Interface guards.
var (
	_ service.TimeSource   = (*mockTimeSource)(nil)
	_ service.SearchSource = (*mockSearchSource)(nil)
)

type mockTimeSource struct {
	NowFunc func(ctx context.Context) (time.Time, error)
	Calls   int
}

func (m *mockTimeSource) Now(ctx context.Context) (time.Time, error) {
	m.Calls++
	if m.NowFunc != nil {
		return m.NowFunc(ctx)
	}
	return time.Date(2025, 6, 1, 15, 4, 0, 0, time.UTC), nil
}

type mockSearchSource struct {
	AnswerFunc func(ctx context.Context, query string) (string, error)
	Calls      int
	LastQuery  string
}

func (m *mockSearchSource) Answer(ctx context.Context, query string) (string, error) {
	m.Calls++
	m.LastQuery = query
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, query)
	}
	return "", nil
}

func newEnricher(ts service.TimeSource, ss service.SearchSource) *service.Enricher {
	return service.NewEnricher(ts, ss, zap.NewNop())
}

func turns(n int, prefix string) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, n)
	for i := 0; i < n; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAssistant
		}
		out = append(out, domain.ChatTurn{Sender: sender, Text: prefix + string(rune('a'+i))})
	}
	return out
}

func TestNeedsLiveData(t *testing.T) {
	t.Parallel()

	cases := []struct {
		message string
		want    bool
	}{
		{"What's the WEATHER in NYC?", true},
		{"any news lately?", true},
		{"stock prices please", true},
		{"is there an event nearby", true},
		{"what happened today", true},
		{"what is the current time", true},
		{"Currently raining?", true},
		{"tell me a joke", false},
		{"explain goroutines", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := service.NeedsLiveData(tc.message); got != tc.want {
			t.Errorf("NeedsLiveData(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestEnrichTriggersSearchOnKeyword(t *testing.T) {
	t.Parallel()

	search := &mockSearchSource{}
	e := newEnricher(&mockTimeSource{}, search)

	e.Enrich(context.Background(), "What's the weather in NYC?", nil)
	if search.Calls != 1 {
		t.Fatalf("search calls = %d, want 1", search.Calls)
	}
	if search.LastQuery != "current What's the weather in NYC?" {
		t.Errorf("query = %q, want %q", search.LastQuery, "current What's the weather in NYC?")
	}

	e.Enrich(context.Background(), "tell me a joke", nil)
	if search.Calls != 1 {
		t.Errorf("search calls after non-trigger message = %d, want 1", search.Calls)
	}
}

func TestEnrichSkipsUnconfiguredSearch(t *testing.T) {
	t.Parallel()

	e := newEnricher(&mockTimeSource{}, nil)

	msgs := e.Enrich(context.Background(), "current weather and news today", nil)
	if strings.Contains(msgs[0].Content, "Incorporate:") {
		t.Errorf("system content contains Incorporate clause without search configured: %q", msgs[0].Content)
	}
}

func TestEnrichEmbedsLiveAnswer(t *testing.T) {
	t.Parallel()

	search := &mockSearchSource{
		AnswerFunc: func(_ context.Context, _ string) (string, error) {
			return "Sunny, 72F", nil
		},
	}
	e := newEnricher(&mockTimeSource{}, search)

	msgs := e.Enrich(context.Background(), "What's the weather in NYC?", nil)
	if !strings.Contains(msgs[0].Content, "Live: Sunny, 72F") {
		t.Errorf("system content = %q, want it to contain %q", msgs[0].Content, "Live: Sunny, 72F")
	}
	if !strings.Contains(msgs[0].Content, "Incorporate:") {
		t.Errorf("system content = %q, want an Incorporate clause", msgs[0].Content)
	}
}

func TestEnrichTruncatesLiveAnswer(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 250)
	search := &mockSearchSource{
		AnswerFunc: func(_ context.Context, _ string) (string, error) {
			return long, nil
		},
	}
	e := newEnricher(&mockTimeSource{}, search)

	msgs := e.Enrich(context.Background(), "weather", nil)
	if strings.Contains(msgs[0].Content, strings.Repeat("x", 201)) {
		t.Error("live answer was not truncated to 200 characters")
	}
	if !strings.Contains(msgs[0].Content, "Live: "+strings.Repeat("x", 200)) {
		t.Error("truncated live answer missing from system content")
	}
}

func TestEnrichSoftFailsOnSearchError(t *testing.T) {
	t.Parallel()

	search := &mockSearchSource{
		AnswerFunc: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("boom")
		},
	}
	e := newEnricher(&mockTimeSource{}, search)

	msgs := e.Enrich(context.Background(), "weather", nil)
	if strings.Contains(msgs[0].Content, "Incorporate:") {
		t.Errorf("system content = %q, want no Incorporate clause on search failure", msgs[0].Content)
	}
}

func TestEnrichSoftFailsOnTimeError(t *testing.T) {
	t.Parallel()

	ts := &mockTimeSource{
		NowFunc: func(_ context.Context) (time.Time, error) {
			return time.Time{}, errors.New("down")
		},
	}
	e := newEnricher(ts, nil)

	msgs := e.Enrich(context.Background(), "hello", nil)
	if !strings.Contains(msgs[0].Content, "currently unavailable") {
		t.Errorf("system content = %q, want unavailable fallback", msgs[0].Content)
	}
}

func TestEnrichEmbedsResolvedTime(t *testing.T) {
	t.Parallel()

	e := newEnricher(&mockTimeSource{}, nil)

	msgs := e.Enrich(context.Background(), "hello", nil)
	if !strings.Contains(msgs[0].Content, "Sunday, June 1, 2025 3:04 PM UTC") {
		t.Errorf("system content = %q, want the resolved time string", msgs[0].Content)
	}
}

func TestEnrichAssemblyOrder(t *testing.T) {
	t.Parallel()

	e := newEnricher(&mockTimeSource{}, nil)
	history := turns(15, "h")

	msgs := e.Enrich(context.Background(), "the question", history)

	if msgs[0].Role != domain.RoleSystem {
		t.Errorf("first role = %q, want system", msgs[0].Role)
	}
	last := msgs[len(msgs)-1]
	if last.Role != domain.RoleUser || last.Content != "the question" {
		t.Errorf("last entry = %+v, want user role with the input message", last)
	}

	middle := msgs[1 : len(msgs)-1]
	if len(middle) != 10 {
		t.Fatalf("windowed history length = %d, want 10", len(middle))
	}
	want := history[5:]
	for i, m := range middle {
		if m.Content != want[i].Text {
			t.Errorf("middle[%d].Content = %q, want %q", i, m.Content, want[i].Text)
		}
		wantRole := domain.RoleAssistant
		if want[i].Sender == domain.SenderUser {
			wantRole = domain.RoleUser
		}
		if m.Role != wantRole {
			t.Errorf("middle[%d].Role = %q, want %q", i, m.Role, wantRole)
		}
	}
}

func TestEnrichWindowDependsOnlyOnSuffix(t *testing.T) {
	t.Parallel()

	e := newEnricher(&mockTimeSource{}, nil)

	suffix := turns(10, "s")
	a := append(turns(5, "early"), suffix...)
	b := append(turns(9, "other"), suffix...)

	msgsA := e.Enrich(context.Background(), "q", a)
	msgsB := e.Enrich(context.Background(), "q", b)

	midA := msgsA[1 : len(msgsA)-1]
	midB := msgsB[1 : len(msgsB)-1]
	if len(midA) != len(midB) {
		t.Fatalf("window lengths differ: %d vs %d", len(midA), len(midB))
	}
	for i := range midA {
		if midA[i] != midB[i] {
			t.Errorf("windows differ at %d: %+v vs %+v", i, midA[i], midB[i])
		}
	}
}

func TestEnrichUnknownSenderMapsToAssistant(t *testing.T) {
	t.Parallel()

	e := newEnricher(&mockTimeSource{}, nil)
	history := []domain.ChatTurn{{Sender: "system", Text: "odd"}}

	msgs := e.Enrich(context.Background(), "q", history)
	if msgs[1].Role != domain.RoleAssistant {
		t.Errorf("unknown sender mapped to %q, want assistant", msgs[1].Role)
	}
}
