package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dealscope/internal/domain"
)

// EvaluatorPort is the TUI-facing subset of the deal evaluator.
type EvaluatorPort interface {
	EvaluateDeal(listing *domain.Listing) domain.Evaluation
	TrainModel(listing *domain.Listing, rating string) error
	TrainInterest(listing *domain.Listing, interest string) error
}

// item is one unreviewed listing queued for feedback.
type item struct {
	listing      domain.Listing
	eval         domain.Evaluation
	evaluated    bool
	ratingDone   bool
	interestDone bool
}

// Model is the Bubble Tea model for the feedback review loop.
type Model struct {
	evaluator EvaluatorPort
	items     []item
	cursor    int
	viewport  viewport.Model
	status    string
	ready     bool
	done      bool
}

// New creates a review model over the given unreviewed corpus entries,
// expected newest first.
func New(evaluator EvaluatorPort, entries []domain.CorpusEntry) Model {
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		listing := e.Details
		// The snapshot predates some fields; make sure the keys are set.
		listing.Link = e.Link
		listing.Title = e.Title
		listing.Price = e.Price
		items = append(items, item{listing: listing})
	}
	vp := viewport.New(0, 0)
	status := "Rate with 1-6, interest with i/n/x, s skips, q quits."
	if len(items) == 0 {
		status = "All items have already been reviewed."
	}
	return Model{evaluator: evaluator, items: items, viewport: vp, status: status}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		reserved := 2 + fh + 1 // header, frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "s":
			return m.advance()
		case "1", "2", "3", "4", "5", "6":
			return m.rate(int(msg.String()[0] - '1'))
		case "i":
			return m.interest(domain.InterestYes)
		case "n":
			return m.interest(domain.InterestNeutral)
		case "x":
			return m.interest(domain.InterestNo)
		}
	}
	return m, nil
}

// View renders the current listing and its evaluation.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Dealscope Review")
	progress := fmt.Sprintf("%d/%d", minInt(m.cursor+1, len(m.items)), len(m.items))
	body := boxStyle.Render(m.viewport.View())
	status := statusStyle.Render(m.status)
	return header + "  " + progress + "\n" + body + "\n" + status
}

func (m Model) rate(idx int) (tea.Model, tea.Cmd) {
	if m.done || m.cursor >= len(m.items) {
		return m, nil
	}
	label := domain.DealClasses[idx]
	it := &m.items[m.cursor]
	if err := m.evaluator.TrainModel(&it.listing, label); err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	it.ratingDone = true
	m.status = "Deal rating recorded: " + label
	return m.maybeAdvance()
}

func (m Model) interest(label string) (tea.Model, tea.Cmd) {
	if m.done || m.cursor >= len(m.items) {
		return m, nil
	}
	it := &m.items[m.cursor]
	if err := m.evaluator.TrainInterest(&it.listing, label); err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	it.interestDone = true
	m.status = "Interest recorded: " + label
	return m.maybeAdvance()
}

func (m Model) maybeAdvance() (tea.Model, tea.Cmd) {
	it := m.items[m.cursor]
	if it.ratingDone && it.interestDone {
		return m.advance()
	}
	m.refresh()
	return m, nil
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.cursor++
	if m.cursor >= len(m.items) {
		m.done = true
		m.status = "All items reviewed."
		return m, tea.Quit
	}
	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	if m.cursor >= len(m.items) {
		m.viewport.SetContent("Nothing left to review.")
		return
	}
	it := &m.items[m.cursor]
	if !it.evaluated {
		it.eval = m.evaluator.EvaluateDeal(&it.listing)
		it.evaluated = true
	}
	m.viewport.SetContent(renderItem(it))
}

func renderItem(it *item) string {
	l := &it.listing
	out := titleStyle.Render(l.Title) + "\n"
	out += fmt.Sprintf("Price: %s\n", priceText(l.Price))
	out += fmt.Sprintf("Link: %s\n\n", l.Link)
	out += fmt.Sprintf("Current Rating: %s\n", it.eval.Rating)
	if it.eval.Stats != nil {
		out += fmt.Sprintf("Avg Price of Similar: $%.2f (based on %d items)\n",
			it.eval.Stats.AveragePrice, it.eval.Stats.SampleSize)
	}
	out += fmt.Sprintf("Interest Prediction: %s\n\n", it.eval.Interest)
	out += "1 Incredible Deal  2 Great Deal  3 Good Deal\n"
	out += "4 Fair Price  5 Slightly Overpriced  6 Overpriced\n"
	out += "i Interested  n Neutral  x Not Interested\n"
	out += checkmark("rating", it.ratingDone) + "  " + checkmark("interest", it.interestDone)
	return out
}

func checkmark(what string, done bool) string {
	if done {
		return doneStyle.Render("✓ " + what)
	}
	return pendingStyle.Render("· " + what)
}

func priceText(price *int) string {
	if price == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%d", *price)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
