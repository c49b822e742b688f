package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackwu/routerchat/model"
)

const scrollFrame = 16 * time.Millisecond

// turnsChangedMsg reports that the session grew to count turns.
type turnsChangedMsg struct {
	count int
}

// scrollFrameMsg advances a smooth scroll. Frames from an older scroll
// are dropped.
type scrollFrameMsg struct {
	seq int
}

// scrollSync is the session observer behind auto-scrolling. observe never
// blocks: pending notifications coalesce into the newest count.
type scrollSync struct {
	ch chan int
}

func newScrollSync() *scrollSync {
	return &scrollSync{ch: make(chan int, 1)}
}

func (s *scrollSync) observe(turns []model.Turn) {
	for {
		select {
		case s.ch <- len(turns):
			return
		default:
		}
		// drop the stale count and retry with the new one
		select {
		case <-s.ch:
		default:
		}
	}
}

// wait delivers the next notification to the program.
func (s *scrollSync) wait() tea.Cmd {
	return func() tea.Msg {
		return turnsChangedMsg{count: <-s.ch}
	}
}

func nextFrame(seq int) tea.Cmd {
	return tea.Tick(scrollFrame, func(time.Time) tea.Msg {
		return scrollFrameMsg{seq: seq}
	})
}

// scrollToNewest starts easing the transcript toward its newest row.
func (m *Model) scrollToNewest() tea.Cmd {
	m.scrollSeq++
	m.scrolling = true
	return nextFrame(m.scrollSeq)
}

func (m *Model) stopScroll() {
	if m.scrolling {
		m.scrolling = false
		m.scrollSeq++
	}
}

// stepScroll moves a third of the remaining distance, at least one row.
func (m *Model) stepScroll(msg scrollFrameMsg) tea.Cmd {
	if !m.scrolling || msg.seq != m.scrollSeq {
		return nil
	}
	target := m.maxOffset()
	if m.offset >= target {
		m.offset = target
		m.scrolling = false
		return nil
	}
	step := (target - m.offset + 2) / 3
	if step < 1 {
		step = 1
	}
	m.offset += step
	if m.offset >= target {
		m.offset = target
		m.scrolling = false
		return nil
	}
	return nextFrame(m.scrollSeq)
}
