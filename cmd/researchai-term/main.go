// researchai-term 是连接 ResearchAI 服务的终端前端
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"researchai/internal/ui"
	"researchai/pkg/logger"

	"github.com/peterh/liner"
)

type command struct {
	name string
	arg  string
}

// parseCommand 把 "/pdf out.pdf" 拆成命令名和参数，普通文本不是命令
func parseCommand(input string) (command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(input[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

func main() {
	var (
		server  string
		history string
		width   int
	)
	flag.StringVar(&server, "server", "http://localhost:3000", "ResearchAI 服务地址")
	flag.StringVar(&history, "history", filepath.Join(os.TempDir(), "researchai_history"), "输入历史文件")
	flag.IntVar(&width, "width", 80, "markdown 折行宽度")
	flag.Parse()

	// 会话日志会打断对话输出，终端里直接丢弃
	logger.SetOutput(io.Discard)

	out := os.Stdout
	p := newPrinter(out, width)
	p.banner("ResearchAI", server)

	session := ui.NewSession(ui.NewHTTPBackend(server, nil), ui.WithObserver(p.observe))
	p.observe(session.Snapshot())

	ctx := context.Background()

	session.CheckConnection(ctx)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	// 连接失败时保留的输入，下次提示时回填
	pending := ""
	for {
		input, err := line.PromptWithSuggestion("research> ", pending, -1)
		pending = ""
		if err != nil {
			// Ctrl+C 或 Ctrl+D
			fmt.Fprintln(out)
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		cmd, ok := parseCommand(input)
		if !ok {
			session.SetInput(input)
			if err := session.Send(ctx); errors.Is(err, ui.ErrDisconnected) {
				pending = session.Input()
			}
			continue
		}

		switch cmd.name {
		case "quit", "exit":
			return
		case "status":
			session.CheckConnection(ctx)
		case "mic":
			_ = session.Listen(ctx)
		case "pdf":
			location, err := session.GenerateReport(ctx, ui.FileDownloader{Path: cmd.arg})
			if err == nil {
				fmt.Fprintln(out, dimStyle.Render("report saved to "+location))
			}
		default:
			fmt.Fprintln(out, dimStyle.Render("unknown command /"+cmd.name))
		}
	}
}
