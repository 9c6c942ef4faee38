// Package ui implements the interactive dry-run review screen using
// bubbletea's Elm architecture.
//
// The model runs a preview filter pass in a goroutine, streams its progress
// through a channel, and then presents every per-track decision in a
// scrollable list so the blocklist and policy outcomes can be inspected
// before a real run.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tidalctl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	ReviewView
)

// Model represents the review screen state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	width        int
	height       int
	decisionList list.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.FilterResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a review model around an engine in dry-run mode.
func NewModel(ctx context.Context, engine *tasks.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   RunningView,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the preview filter pass.
func (m *Model) Init() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Filter(m.ctx, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.decisionList.Width() == 0 {
			m.decisionList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if m.view == ReviewView {
			var cmd tea.Cmd
			m.decisionList, cmd = m.decisionList.Update(msg)
			return m, cmd
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case filterCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.result = msg.result
		items := make([]list.Item, len(msg.result.Decisions))
		for i, decision := range msg.result.Decisions {
			items[i] = decisionItem{decision: decision}
		}
		m.decisionList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.decisionList.Title = "Preview: filter decisions"
		m.decisionList.SetSize(m.width-4, m.height-8)
		m.view = ReviewView
		return m, nil
	}

	if m.view == ReviewView {
		var cmd tea.Cmd
		m.decisionList, cmd = m.decisionList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Preview failed: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case RunningView:
		return m.renderRunning()
	case ReviewView:
		return m.renderReview()
	default:
		return ""
	}
}

// Err returns the error the preview pass ended with, if any.
func (m *Model) Err() error {
	return m.err
}

// Result returns the preview outcome once the pass finished.
func (m *Model) Result() *tasks.FilterResult {
	return m.result
}

type progressUpdateMsg tasks.ProgressUpdate

type filterCompleteMsg struct {
	result *tasks.FilterResult
	err    error
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return filterCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRunning() string {
	title := styles.title.Render("Previewing filter run")
	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, message, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderReview() string {
	summary := fmt.Sprintf(
		"would add %d  blocked %d  skipped %d  duplicates %d  excluded %d",
		m.result.Added, m.result.Blocked, m.result.Skipped, m.result.Duplicates, m.result.Excluded,
	)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.decisionList.View(), styles.ok.Render(summary), helpView)
}

var _ list.Item = decisionItem{}

// decisionItem wraps [tasks.Decision] to implement [list.Item].
type decisionItem struct {
	decision tasks.Decision
}

func (i decisionItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.decision.Track.Artist, i.decision.Track.Title)
}

func (i decisionItem) Title() string {
	return fmt.Sprintf("%s - %s", i.decision.Track.Artist, i.decision.Track.Title)
}

func (i decisionItem) Description() string {
	genres := "unknown genre"
	if len(i.decision.Genres) > 0 {
		genres = strings.Join(i.decision.Genres, ", ")
	}
	outcome := strings.ToUpper(i.decision.Outcome.String())
	switch i.decision.Outcome {
	case tasks.OutcomeAdded:
		outcome = styles.ok.Render(outcome)
	case tasks.OutcomeBlocked, tasks.OutcomeExcluded:
		outcome = styles.err.Render(outcome)
	default:
		outcome = styles.warn.Render(outcome)
	}
	return fmt.Sprintf("%s • %s", outcome, genres)
}
