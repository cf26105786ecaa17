package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"askhr/internal/domain"
	"askhr/internal/service"
)

type fakeAsk struct {
	ans service.Answer
	err error
}

func (f fakeAsk) Ask(string, int) (service.Answer, error) { return f.ans, f.err }
func (f fakeAsk) Describe() string                        { return "Loaded 2 text chunks from 1 document(s)." }

func submit(t *testing.T, m Model, q string) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m.input.SetValue(q)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestModel_StatusPerOutcome(t *testing.T) {
	cases := []struct {
		name string
		svc  fakeAsk
		want string
	}{
		{"no knowledge base", fakeAsk{ans: service.Answer{Status: service.StatusNoKnowledgeBase, Text: "none"}}, "No knowledge base"},
		{"no results", fakeAsk{ans: service.Answer{Status: service.StatusNoResults, Text: "nothing"}}, "Nothing relevant"},
		{"error", fakeAsk{err: errors.New("boom")}, "Error: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := submit(t, New(tc.svc, 4), "casual leave")
			if !strings.HasPrefix(m.status, tc.want) {
				t.Fatalf("status %q does not start with %q", m.status, tc.want)
			}
		})
	}
}

func TestModel_PagesThroughResults(t *testing.T) {
	svc := fakeAsk{ans: service.Answer{
		Status: service.StatusAnswered,
		Text:   "answer",
		Results: []domain.ScoredChunk{
			{Chunk: domain.Chunk{Text: "Casual leaves are twelve.", Source: "a.txt"}, Score: 0.9},
			{Chunk: domain.Chunk{Text: "Notice is thirty days.", Source: "b.txt"}, Score: 0.1},
		},
	}}
	m := submit(t, New(svc, 4), "casual")
	if m.cursor != 0 || m.input.Value() != "" {
		t.Fatalf("expected fresh cursor and cleared input")
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 || !strings.Contains(m.render(), "b.txt") {
		t.Fatalf("expected second source, got cursor %d", m.cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if next.(Model).cursor != 0 {
		t.Fatalf("expected pager to wrap")
	}
}

func TestHighlightBestSentence(t *testing.T) {
	text := "Notice is thirty days. Casual leaves are twelve per year."
	got := highlightBestSentence(text, "how many casual leaves")
	if !strings.Contains(got, "Notice is thirty days.") || !strings.Contains(got, "twelve per year.") {
		t.Fatalf("sentences lost: %q", got)
	}
	if plain := highlightBestSentence(text, "the"); plain != text {
		t.Fatalf("stop-word query should not highlight, got %q", plain)
	}

	cut := "Casual leaves are twelve per year. Unused leaves lapse at the end of Mar"
	got = highlightBestSentence(cut, "casual leaves")
	if !strings.Contains(got, "Casual leaves are twelve per year.") || !strings.HasSuffix(got, "lapse at the end of Mar") {
		t.Fatalf("unterminated tail lost: %q", got)
	}
	if plain := highlightBestSentence("no terminator here", "the"); plain != "no terminator here" {
		t.Fatalf("unterminated text changed: %q", plain)
	}
}
