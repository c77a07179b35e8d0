// Package ui 保存聊天前端的状态：内存中的消息列表、连接徽章，
// 以及发送、报告与语音流程。前端负责渲染它发布的快照。
package ui

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName 是消息上方显示的名字
func (r Role) DisplayName() string {
	if r == RoleUser {
		return "You"
	}
	return "Research Assistant"
}

// Message 追加到消息列表后不再修改
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

func newMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

// Time 按聊天列表的格式显示时间
func (m Message) Time() string {
	return m.Timestamp.Format("03:04 PM")
}

type ConnectionStatus int

const (
	StatusChecking ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusDisconnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "checking"
	}
}

// Label 是徽章文字
func (s ConnectionStatus) Label() string {
	switch s {
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "API Connected"
	case StatusDisconnected:
		return "API Disconnected"
	default:
		return "Checking Connection..."
	}
}

// BadgeKind 取值为 ""、"warning"、"success"、"error"
func (s ConnectionStatus) BadgeKind() string {
	switch s {
	case StatusConnecting:
		return "warning"
	case StatusConnected:
		return "success"
	case StatusDisconnected:
		return "error"
	default:
		return ""
	}
}

const (
	WelcomeMessage = "Welcome to your AI research assistant. I can help you:\n" +
		"<ul>\n" +
		"<li>Find and summarize academic papers</li>\n" +
		"<li>Generate citations in multiple formats</li>\n" +
		"<li>Identify key arguments and evidence</li>\n" +
		"<li>Suggest related research topics</li>\n" +
		"</ul>\n" +
		"What would you like to research today?"

	ConnectionErrorMessage   = "Error: Could not connect to the backend server. Please ensure the server is running."
	SpeechUnsupportedMessage = "Speech recognition is not supported in this environment. Please type your question instead."

	// ReportFilename 是下载报告时建议的文件名
	ReportFilename = "research-report.pdf"
)
