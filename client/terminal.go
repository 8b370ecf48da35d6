package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"netcube/game"
)

// keyHold 终端只上报按键事件而非按住状态：最近一次事件后的该时间窗口内视为按住
const keyHold = 250 * time.Millisecond

type direction int

const (
	dirLeft direction = iota
	dirRight
	dirDown
	dirUp
	dirCount
)

// Terminal 基于 tcell 的本地输入源，同时提供一行状态显示
type Terminal struct {
	screen tcell.Screen
	quit   func()

	mu   sync.Mutex
	last [dirCount]time.Time
	now  func() time.Time
}

// NewTerminal 初始化终端屏幕；quit 在用户按下 q / Ctrl+C 时调用
func NewTerminal(quit func()) (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("new screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.Clear()
	t := &Terminal{screen: s, quit: quit, now: time.Now}
	go t.poll()
	return t, nil
}

// Close 恢复终端
func (t *Terminal) Close() {
	t.screen.Fini()
}

func (t *Terminal) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return // Fini 之后
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
				if t.quit != nil {
					t.quit()
				}
				continue
			}
			if d, ok := keyDirection(ev); ok {
				t.press(d)
			}
		}
	}
}

func keyDirection(ev *tcell.EventKey) (direction, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return dirLeft, true
	case tcell.KeyRight:
		return dirRight, true
	case tcell.KeyDown:
		return dirDown, true
	case tcell.KeyUp:
		return dirUp, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a', 'A':
			return dirLeft, true
		case 'd', 'D':
			return dirRight, true
		case 's', 'S':
			return dirDown, true
		case 'w', 'W':
			return dirUp, true
		}
	}
	return 0, false
}

func (t *Terminal) press(d direction) {
	t.mu.Lock()
	t.last[d] = t.now()
	t.mu.Unlock()
}

// Sample 实现 InputSource
func (t *Terminal) Sample() game.Keys {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	held := func(d direction) bool {
		return !t.last[d].IsZero() && now.Sub(t.last[d]) < keyHold
	}
	return game.Keys{
		Left:  held(dirLeft),
		Right: held(dirRight),
		Down:  held(dirDown),
		Up:    held(dirUp),
	}
}

// Render 在第一行显示状态
func (t *Terminal) Render(status string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorLime)
	w, _ := t.screen.Size()
	col := 0
	for _, r := range status {
		if col >= w {
			break
		}
		t.screen.SetContent(col, 0, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		t.screen.SetContent(col, 0, ' ', nil, style)
	}
	t.screen.Show()
}
