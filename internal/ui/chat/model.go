// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/components"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Options carries the wired dependencies for the chat view.
type Options struct {
	Theme   *styles.Theme
	Store   *store.SessionStore
	Orch    *orchestrator.Orchestrator
	Gate    *quota.Gate
	Speaker speakToggler // may be nil when no audio device is available
	Log     logging.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	log   logging.Logger

	st      *store.SessionStore
	orch    *orchestrator.Orchestrator
	gate    *quota.Gate
	speaker speakToggler

	updates chan orchestrator.Update

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	statusBar components.StatusBar
	errBanner components.ErrorBanner
	upgrade   components.UpgradePrompt

	mode         model.Mode
	deepThink    bool
	autoSpeak    bool
	sessionID    string
	pendingImage string

	streaming bool
	notice    string

	sessionsOpen bool
	sessionIdx   int

	width  int
	height int
	ready  bool
}

// New creates the chat view. Saved preferences seed the toggles; the most
// recently updated session becomes active.
func New(opts Options) *Model {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message... (/help for commands)"
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	prefs := store.LoadPrefs(opts.Store.KV())

	m := &Model{
		theme:     opts.Theme,
		keys:      DefaultKeyMap(),
		log:       opts.Log,
		st:        opts.Store,
		orch:      opts.Orch,
		gate:      opts.Gate,
		speaker:   opts.Speaker,
		updates:   make(chan orchestrator.Update, 64),
		textarea:  ta,
		spinner:   sp,
		statusBar: components.NewStatusBar(opts.Theme),
		errBanner: components.NewErrorBanner(opts.Theme),
		upgrade:   components.NewUpgradePrompt(opts.Theme),
		mode:      model.ModeEducation,
		deepThink: prefs.DeepThink,
		autoSpeak: prefs.AutoSpeak,
		sessionID: opts.Store.ActiveID(),
	}

	// Dropped updates are tolerable; the transcript is re-read from the
	// store on every chunk anyway.
	opts.Orch.SetNotify(func(u orchestrator.Update) {
		select {
		case m.updates <- u:
		default:
		}
	})

	return m
}

// Init starts the spinner, cursor blink, and the update-channel drain.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		waitForUpdate(m.updates),
	)
}

// savePrefs writes the current toggles through to storage.
func (m *Model) savePrefs() {
	p := store.Prefs{
		Dark:      m.theme.IsDark,
		AutoSpeak: m.autoSpeak,
		DeepThink: m.deepThink,
	}
	if err := store.SavePrefs(m.st.KV(), p); err != nil {
		m.log.Warnf("preference save failed: %v", err)
	}
}

// quotaAction maps the current composition to the gated action, if any.
// Text-only sends outside image mode are not gated.
func (m *Model) quotaAction() (quota.Action, bool) {
	if m.mode == model.ModeImage {
		return quota.ActionImageGeneration, true
	}
	if m.pendingImage != "" {
		return quota.ActionImageUpload, true
	}
	return 0, false
}
