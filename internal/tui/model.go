package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"askhr/internal/answer"
	"askhr/internal/embedding/tfidf"
	"askhr/internal/service"
)

// AskPort is the TUI-facing subset of the RAG service.
type AskPort interface {
	Ask(question string, k int) (service.Answer, error)
	Describe() string
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	service   AskPort
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	answer    service.Answer
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(svc AskPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about HR policies and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  svc,
		topK:     topK,
		input:    ti,
		viewport: vp,
		summary:  svc.Describe(),
		status:   "Type a question. Up/down pages through sources.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m = m.ask(q)
			m.input.SetValue("")
			return m, nil
		case "down":
			if n := len(m.answer.Results); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if n := len(m.answer.Results); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) Model {
	ans, err := m.service.Ask(q, m.topK)
	m.cursor = 0
	m.lastQuery = q
	switch {
	case err != nil:
		m.status = "Error: " + err.Error()
		m.answer = service.Answer{}
	case ans.Status == service.StatusNoKnowledgeBase:
		m.status = "No knowledge base. Run `askhr build <files>` first."
		m.answer = ans
	case ans.Status == service.StatusNoResults:
		m.status = fmt.Sprintf("Nothing relevant for %q", q)
		m.answer = ans
	default:
		m.status = fmt.Sprintf("%d source(s) for %q", len(ans.Results), q)
		m.answer = ans
	}
	m.viewport.SetContent(m.render())
	return m
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("AskHR")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if m.answer.Text == "" {
		return "No questions asked yet."
	}
	if len(m.answer.Results) == 0 {
		return m.answer.Text
	}
	r := m.answer.Results[m.cursor]
	title := fmt.Sprintf("Source %d/%d  %s #%d  score=%.3f",
		m.cursor+1, len(m.answer.Results), r.Source, r.ChunkID, r.Score)
	body := highlightBestSentence(answer.Preview(r.Text, previewRunes), m.lastQuery)
	return m.answer.Text + "\n\n" + sourceStyle.Render(title) + "\n" + body
}

const previewRunes = 1200

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing the most
// non-stop-word tokens with the query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := splitSentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(trimAll(sentences), " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := overlap(qTokens, s); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	sentences = trimAll(sentences)
	if bestScore > 0 {
		sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	}
	return strings.Join(sentences, " ")
}

// splitSentences cuts text at sentence terminators. Text after the last
// terminator is kept as a final sentence.
func splitSentences(text string) []string {
	var sentences []string
	end := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[loc[0]:loc[1]])
		end = loc[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func trimAll(ss []string) []string {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
	return ss
}

func toTokenSet(s string) map[string]struct{} {
	tokens := tfidf.Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if !tfidf.IsStopword(t) {
			set[t] = struct{}{}
		}
	}
	return set
}

func overlap(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for t := range toTokenSet(sentence) {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
