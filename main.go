package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mlanoe/chorus/internal/catalog"
	"github.com/mlanoe/chorus/internal/config"
	"github.com/mlanoe/chorus/internal/engine"
	"github.com/mlanoe/chorus/internal/errmsg"
	"github.com/mlanoe/chorus/internal/library"
	"github.com/mlanoe/chorus/internal/state"
	"github.com/mlanoe/chorus/internal/transport"
)

var playerBarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

type stateMsg engine.State

type positionMsg time.Duration

type readyMsg transport.Metadata

type playbackErrMsg engine.ErrorEvent

type model struct {
	eng       *engine.Engine
	cat       *catalog.Catalog
	sub       *engine.Subscription
	snap      engine.State
	meta      *transport.Metadata
	position  time.Duration
	errorMsg  string
	songCount int
	width     int
}

func initialModel() (model, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, nil, err
	}
	playerCfg := cfg.GetPlayerConfig()

	stateMgr, err := state.Open()
	if err != nil {
		return model{}, nil, err
	}

	cat := catalog.New(stateMgr.DB())
	if cfg.LibraryFolder != "" {
		if _, err := library.NewScanner(cat).Scan(context.Background(), cfg.LibraryFolder); err != nil {
			stateMgr.Close()
			return model{}, nil, err
		}
	}
	songCount, _ := cat.SongCount()

	eng, err := engine.New(transport.New(), cat, stateMgr, engine.Options{
		MaxAutoQueue:    playerCfg.MaxAutoQueueLength,
		DefaultPlaylist: playerCfg.DefaultPlaylist,
	})
	if err != nil {
		stateMgr.Close()
		return model{}, nil, err
	}

	cleanup := func() {
		eng.Close()
		stateMgr.Close()
	}

	return model{
		eng:       eng,
		cat:       cat,
		sub:       eng.Subscribe(),
		snap:      eng.State(),
		songCount: songCount,
	}, cleanup, nil
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.sub)
}

func waitForEvent(sub *engine.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-sub.StateChanged:
			return stateMsg(s)
		case pos := <-sub.PositionChanged:
			return positionMsg(pos)
		case meta := <-sub.SourceReady:
			return readyMsg(meta)
		case e := <-sub.Error:
			return playbackErrMsg(e)
		case <-sub.Done:
			return tea.Quit()
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case stateMsg:
		m.snap = engine.State(msg)
		return m, waitForEvent(m.sub)

	case positionMsg:
		m.position = time.Duration(msg)
		return m, waitForEvent(m.sub)

	case readyMsg:
		meta := transport.Metadata(msg)
		m.meta = &meta
		return m, waitForEvent(m.sub)

	case playbackErrMsg:
		m.errorMsg = engine.ErrorEvent(msg).Message()
		return m, waitForEvent(m.sub)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.snap = m.eng.Dispatch(engine.TogglePause{})
		case "n", "enter":
			m.snap = m.eng.Dispatch(engine.Skip{})
		case "p":
			m.snap = m.eng.Dispatch(engine.Previous{})
		case "l":
			m.snap = m.eng.Dispatch(engine.ToggleLoop{})
		case "s":
			m.snap = m.eng.Dispatch(engine.ToggleShuffle{})
		case "m":
			m.snap = m.eng.Dispatch(engine.ToggleMute{})
		case "up":
			m.snap = m.eng.Dispatch(engine.SetSliderVolume{Volume: m.snap.SliderVolume + 5})
		case "down":
			m.snap = m.eng.Dispatch(engine.SetSliderVolume{Volume: m.snap.SliderVolume - 5})
		}
	}

	return m, nil
}

func (m model) View() string {
	title := "nothing playing"
	if m.meta != nil && m.snap.CurrentSongID != 0 {
		title = m.meta.Title
		if m.meta.Artist != "" {
			title = fmt.Sprintf("%s - %s", m.meta.Artist, m.meta.Title)
		}
	}

	status := "⏸"
	if !m.snap.Paused {
		status = "▶"
	}

	var duration time.Duration
	if m.meta != nil {
		duration = m.meta.Duration
	}

	modes := ""
	if m.snap.Loop {
		modes += " [loop]"
	}
	if m.snap.Shuffle {
		modes += " [shuffle]"
	}
	if m.snap.Muted {
		modes += " [muted]"
	}

	line := fmt.Sprintf(" %s  %s  %s / %s  vol %.0f%%%s",
		status, title,
		formatDuration(m.position), formatDuration(duration),
		m.snap.SliderVolume, modes,
	)

	footer := fmt.Sprintf(" %s songs · playlist: %s · queue: %d user / %d auto",
		humanize.Comma(int64(m.songCount)),
		m.snap.PlaylistName,
		len(m.snap.Queues.User), len(m.snap.Queues.Auto),
	)

	view := playerBarStyle.Width(max(m.width-2, 0)).Render(line) + "\n" + footer
	if m.errorMsg != "" {
		view += "\n" + errStyle.Render(" "+m.errorMsg)
	}
	return view
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func main() {
	m, cleanup, err := initialModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
