package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
)

// Options configures the terminal viewer
type Options struct {
	Frame         time.Duration // wall-clock time between frames
	Tick          time.Duration // simulated time per session tick
	StepsPerFrame int
	MaxSteps      int
}

// OptionsFromConfig builds viewer options from the ui.watch and training sections
func OptionsFromConfig(c config.Config) Options {
	return Options{
		Frame:         time.Duration(c.UI.Watch.FrameMs) * time.Millisecond,
		Tick:          c.Training.Tick(),
		StepsPerFrame: c.UI.Watch.StepsPerFrame,
		MaxSteps:      c.UI.Watch.MaxSteps,
	}
}

// Model is the Bubble Tea model driving a session.
type Model struct {
	ctx     context.Context
	session *session.Session
	opts    Options
	logger  zerolog.Logger

	pending  *core.Action
	last     session.TickResult
	recent   []events.EpisodeSummary
	paused   bool
	quitting bool
	err      error
}

const recentEpisodes = 5

// NewModel creates a viewer for s
func NewModel(ctx context.Context, s *session.Session, opts Options, logger zerolog.Logger) Model {
	opts.StepsPerFrame = max(opts.StepsPerFrame, 1)
	opts.MaxSteps = max(opts.MaxSteps, opts.StepsPerFrame)

	eng := s.Engine()
	return Model{
		ctx:     ctx,
		session: s,
		opts:    opts,
		logger:  logger.With().Str("component", "TerminalViewer").Logger(),
		last: session.TickResult{
			Grid:     eng.Grid().Clone(),
			Entities: eng.Entities(),
			Player:   eng.Player(),
			Phase:    s.Phase(),
			Episode:  s.Episode(),
			Epsilon:  s.Agent().Epsilon(),
		},
	}
}

// Init starts the frame timer.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Frame)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := MapKey(msg)
	switch cmd {
	case CommandQuit:
		m.quitting = true
		return m, tea.Quit
	case CommandAction:
		m.pending = &action
	case CommandPause:
		m.paused = !m.paused
	case CommandFaster:
		m.opts.StepsPerFrame = min(m.opts.StepsPerFrame*2, m.opts.MaxSteps)
	case CommandSlower:
		m.opts.StepsPerFrame = max(m.opts.StepsPerFrame/2, 1)
	}
	return m, nil
}

// handleTick runs StepsPerFrame session ticks. A pending key press is used
// for the first of them only.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.paused {
		return m, tickCmd(m.opts.Frame)
	}

	for i := 0; i < m.opts.StepsPerFrame; i++ {
		input := m.pending
		m.pending = nil

		res, err := m.session.Tick(m.ctx, m.opts.Tick, input)
		if err != nil {
			if errors.Is(err, experience.ErrInvalidState) {
				m.logger.Error().Err(err).Msg("Tick aborted")
				continue
			}
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		m.last = res
		if res.EpisodeEnded && res.Summary != nil {
			m.recent = append(m.recent, *res.Summary)
			if len(m.recent) > recentEpisodes {
				m.recent = m.recent[len(m.recent)-recentEpisodes:]
			}
		}
	}
	return m, tickCmd(m.opts.Frame)
}

// Err returns the error that stopped the viewer, if any
func (m Model) Err() error { return m.err }

func (m Model) StepsPerFrame() int              { return m.opts.StepsPerFrame }
func (m Model) Paused() bool                    { return m.paused }
func (m Model) Last() session.TickResult        { return m.last }
func (m Model) Recent() []events.EpisodeSummary { return m.recent }

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Bomberman RL"))
	sb.WriteString("\n\n")
	sb.WriteString(StyledBoard(m.last))
	sb.WriteString("\n\n")
	sb.WriteString(statusStyle.Render(StatusLine(m.last, m.session.Agent().Memory().Len(), m.opts.StepsPerFrame, m.paused)))
	sb.WriteByte('\n')

	for i := len(m.recent) - 1; i >= 0; i-- {
		e := m.recent[i]
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  #%d %-9s score %2d  steps %4d  reward %7.1f",
			e.Episode, e.Outcome, e.Score, e.Steps, e.TotalReward)))
		sb.WriteByte('\n')
	}

	sb.WriteString(helpStyle.Render("arrows/wasd move  space bomb  p pause  +/- speed  q quit"))
	return sb.String()
}

// Run starts the Bubble Tea program for s and blocks until it exits.
func Run(ctx context.Context, s *session.Session, opts Options, logger zerolog.Logger) error {
	p := tea.NewProgram(
		NewModel(ctx, s, opts, logger),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
