package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/cosmic-utils/diskscan/scan"
)

// progressModel renders an inline progress bar on stderr while the
// scan goroutine feeds snapshots through the channel.
type progressModel struct {
	bar  progress.Model
	ch   <-chan scan.ProgressSnapshot
	snap scan.ProgressSnapshot
}

type snapMsg scan.ProgressSnapshot

type progressClosedMsg struct{}

func newProgressModel(ch <-chan scan.ProgressSnapshot) progressModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40
	return progressModel{bar: bar, ch: ch}
}

func waitSnap(ch <-chan scan.ProgressSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return snapMsg(snap)
	}
}

func (m progressModel) Init() tea.Cmd {
	return waitSnap(m.ch)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapMsg:
		m.snap = scan.ProgressSnapshot(msg)
		if m.snap.Done {
			return m, tea.Quit
		}
		return m, waitSnap(m.ch)
	case progressClosedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		w := msg.Width - 40
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.bar.Width = w
	}
	return m, nil
}

func (m progressModel) View() string {
	eta := ""
	if m.snap.ETAKnown {
		eta = fmt.Sprintf("  ETA %s", (time.Duration(m.snap.ETASeconds) * time.Second).Round(time.Second))
	}
	return fmt.Sprintf("  %s %5.1f%%  %s%s\n",
		m.bar.ViewAs(m.snap.Percent/100),
		m.snap.Percent,
		humanize.Bytes(m.snap.BytesProcessed),
		eta)
}

// runProgressUI consumes snapshots until the channel closes or a Done
// snapshot arrives. It blocks, so callers run it in a goroutine.
func runProgressUI(ch <-chan scan.ProgressSnapshot) error {
	p := tea.NewProgram(newProgressModel(ch),
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil))
	_, err := p.Run()
	// Drain anything the scanner sends after Done so it never blocks.
	for range ch {
	}
	return err
}
