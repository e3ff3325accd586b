package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/liliang-cn/chatrelay/internal/domain"
	"go.uber.org/zap"
)

const (
	// historyWindow is the maximum number of history turns forwarded to the
	// model per request.
	historyWindow = 10
	// liveInfoMaxLen caps the search answer embedded into the system message.
	liveInfoMaxLen = 200

	liveInfoPrefix    = "Live: "
	searchQueryPrefix = "current "

	timeUnavailable = "currently unavailable"

	systemInstruction = "You are a helpful assistant. Be concise and use the " +
		"conversation history for context. The current date and time is %s."
)

// liveKeywords triggers live-data retrieval when any appears in the user
// message. This is a coarse substring heuristic, not intent classification;
// false positives and negatives are expected.
var liveKeywords = []string{"weather", "news", "stock", "event", "today"}

// TimeSource resolves the current time in the configured timezone.
type TimeSource interface {
	Now(ctx context.Context) (time.Time, error)
}

// SearchSource returns a synthesized answer for a free-text query.
type SearchSource interface {
	Answer(ctx context.Context, query string) (string, error)
}

// TimeResult is the outcome of time resolution: either a resolved instant or
// an explicit unavailable marker. Keeping the marker out of the value makes
// "unavailable" machine-distinguishable from a genuine time string.
type TimeResult struct {
	At        time.Time
	Available bool
}

// Display renders the result for embedding into the system message.
func (r TimeResult) Display() string {
	if !r.Available {
		return timeUnavailable
	}
	return r.At.Format("Monday, January 2, 2006 3:04 PM MST")
}

// NeedsLiveData reports whether a user message should trigger live-data
// retrieval. Exported as a named predicate so a real intent classifier can
// replace it without touching the pipeline's control flow.
func NeedsLiveData(message string) bool {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "current") {
		return true
	}
	for _, kw := range liveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Enricher assembles the model-ready message sequence from a user message,
// recent history, and live lookups from the time and search collaborators.
// Collaborator failures degrade into fallback values; Enrich never fails.
type Enricher struct {
	timeSource TimeSource
	search     SearchSource // nil when no search credential is configured
	logger     *zap.Logger
}

// NewEnricher creates an enrichment pipeline. search may be nil, which
// disables live-data retrieval entirely.
func NewEnricher(timeSource TimeSource, search SearchSource, logger *zap.Logger) *Enricher {
	return &Enricher{
		timeSource: timeSource,
		search:     search,
		logger:     logger,
	}
}

// Enrich builds the ordered message sequence for the model:
// one system entry, at most historyWindow history entries in original order,
// then the new user message.
func (e *Enricher) Enrich(ctx context.Context, message string, history []domain.ChatTurn) []domain.ModelMessage {
	now := e.resolveTime(ctx)
	live := e.liveInfo(ctx, message)

	messages := make([]domain.ModelMessage, 0, historyWindow+2)
	messages = append(messages, domain.ModelMessage{
		Role:    domain.RoleSystem,
		Content: systemContent(now, live),
	})
	messages = append(messages, windowHistory(history)...)
	messages = append(messages, domain.ModelMessage{
		Role:    domain.RoleUser,
		Content: message,
	})

	return messages
}

func (e *Enricher) resolveTime(ctx context.Context) TimeResult {
	now, err := e.timeSource.Now(ctx)
	if err != nil {
		e.logger.Warn("time service unavailable, continuing without time", zap.Error(err))
		return TimeResult{}
	}
	return TimeResult{At: now, Available: true}
}

// liveInfo returns the tagged, truncated search answer, or an empty string
// when search is unconfigured, not triggered, failing, or answerless.
func (e *Enricher) liveInfo(ctx context.Context, message string) string {
	if e.search == nil || !NeedsLiveData(message) {
		return ""
	}

	answer, err := e.search.Answer(ctx, searchQueryPrefix+message)
	if err != nil {
		e.logger.Warn("search service unavailable, continuing without live data", zap.Error(err))
		return ""
	}
	if answer == "" {
		return ""
	}

	if utf8.RuneCountInString(answer) > liveInfoMaxLen {
		answer = string([]rune(answer)[:liveInfoMaxLen])
	}
	return liveInfoPrefix + answer
}

func systemContent(now TimeResult, live string) string {
	content := fmt.Sprintf(systemInstruction, now.Display())
	if live != "" {
		content += " Incorporate: " + live
	}
	return content
}

// windowHistory maps the last historyWindow turns to model messages,
// preserving order. Unknown senders map to the assistant role.
func windowHistory(history []domain.ChatTurn) []domain.ModelMessage {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	out := make([]domain.ModelMessage, 0, len(history))
	for _, turn := range history {
		role := domain.RoleAssistant
		if turn.Sender == domain.SenderUser {
			role = domain.RoleUser
		}
		out = append(out, domain.ModelMessage{Role: role, Content: turn.Text})
	}
	return out
}
