package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"researchai/internal/ui"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb"))
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111827"))
	botStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	dimStyle   = lipgloss.NewStyle().Faint(true)

	badgeBase   = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	badgeColors = map[string]lipgloss.Color{
		"":        lipgloss.Color("#6b7280"),
		"warning": lipgloss.Color("#f59e0b"),
		"success": lipgloss.Color("#10b981"),
		"error":   lipgloss.Color("#ef4444"),
	}
)

func badge(status ui.ConnectionStatus) string {
	return badgeBase.Foreground(badgeColors[status.BadgeKind()]).Render("● " + status.Label())
}

// printer 增量输出会话变化：已显示的消息跳过，徽章只在变化时打印
type printer struct {
	out      io.Writer
	markdown *glamour.TermRenderer

	mu         sync.Mutex
	shown      int
	lastStatus ui.ConnectionStatus
	wasLoading bool
}

func newPrinter(out io.Writer, width int) *printer {
	p := &printer{out: out, lastStatus: ui.StatusChecking}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		p.markdown = md
	}
	return p
}

func (p *printer) banner(appName, server string) {
	fmt.Fprintln(p.out, titleStyle.Render(appName+" | AI Research Assistant"))
	fmt.Fprintln(p.out, dimStyle.Render("server "+server+"  commands: /pdf [path]  /mic  /status  /quit"))
	fmt.Fprintln(p.out)
}

func (p *printer) observe(snap ui.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap.Status != p.lastStatus {
		p.lastStatus = snap.Status
		fmt.Fprintln(p.out, badge(snap.Status))
	}

	for ; p.shown < len(snap.Messages); p.shown++ {
		p.message(snap.Messages[p.shown])
	}

	if snap.Loading && !p.wasLoading {
		fmt.Fprintln(p.out, dimStyle.Render("Research Assistant is thinking..."))
	}
	p.wasLoading = snap.Loading
}

func (p *printer) message(msg ui.Message) {
	style := botStyle
	if msg.Role == ui.RoleUser {
		style = userStyle
	}
	fmt.Fprintf(p.out, "%s %s\n", style.Render(msg.Role.DisplayName()), timeStyle.Render(msg.Time()))

	if msg.Role == ui.RoleUser {
		fmt.Fprintln(p.out, msg.Content)
		fmt.Fprintln(p.out)
		return
	}
	fmt.Fprintln(p.out, p.render(msg.Content))
}

func (p *printer) render(content string) string {
	text := ui.PlainText(content)
	if p.markdown == nil {
		return text + "\n"
	}
	rendered, err := p.markdown.Render(text)
	if err != nil {
		return text + "\n"
	}
	return strings.TrimLeft(rendered, "\n")
}
