package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"researchai/pkg/logger"
)

// ErrDisconnected 表示连接检查失败导致操作中止，可见的错误消息已追加
var ErrDisconnected = errors.New("backend disconnected")

// Snapshot 是交给观察者的会话状态副本
type Snapshot struct {
	Messages []Message
	Status   ConnectionStatus
	Loading  bool
	Input    string
}

type Option func(*Session)

func WithSpeech(src SpeechSource) Option {
	return func(s *Session) { s.speech = src }
}

// WithObserver 注册每次状态变化后调用的回调
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) { s.observers = append(s.observers, fn) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session 对应一个聊天窗口：消息、输入框、连接徽章与加载状态
type Session struct {
	backend    Backend
	speech     SpeechSource
	transcript *Transcript
	now        func() time.Time
	observers  []func(Snapshot)

	mu      sync.Mutex
	status  ConnectionStatus
	loading bool
	input   string
}

func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend:    backend,
		speech:     NoSpeech{},
		transcript: NewTranscript(),
		now:        time.Now,
		status:     StatusChecking,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.transcript.Append(newMessage(RoleAssistant, WelcomeMessage, s.now()))
	return s
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Messages: s.transcript.Messages(),
		Status:   s.status,
		Loading:  s.loading,
		Input:    s.input,
	}
}

func (s *Session) Messages() []Message {
	return s.transcript.Messages()
}

func (s *Session) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) SetInput(text string) {
	s.update(func() { s.input = text })
}

// update 在锁内执行 fn，释放锁后再通知观察者
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, observer := range s.observers {
		observer(snap)
	}
}

func (s *Session) appendMessage(role Role, content string) {
	s.update(func() {
		s.transcript.Append(newMessage(role, content, s.now()))
	})
}

// CheckConnection 探测服务端并更新徽章，失败时追加一条错误消息
func (s *Session) CheckConnection(ctx context.Context) bool {
	s.update(func() { s.status = StatusConnecting })

	if err := s.backend.Status(ctx); err != nil {
		logger.Warnf("connection check failed: %v", err)
		s.update(func() {
			s.status = StatusDisconnected
			s.transcript.Append(newMessage(RoleAssistant, ConnectionErrorMessage, s.now()))
		})
		return false
	}

	s.update(func() { s.status = StatusConnected })
	return true
}

// Send 提交当前输入。上游失败会变成一条 "Error: ..." 助手消息，
// 只有连接检查失败才作为错误返回
func (s *Session) Send(ctx context.Context) error {
	text := strings.TrimSpace(s.Input())
	if text == "" {
		return nil
	}

	if s.Status() != StatusConnected && !s.CheckConnection(ctx) {
		return ErrDisconnected
	}

	s.update(func() {
		s.transcript.Append(newMessage(RoleUser, text, s.now()))
		s.input = ""
		s.loading = true
	})

	reply, err := s.backend.Chat(ctx, text)
	content := reply
	if err != nil {
		logger.Errorf("chat request failed: %v", err)
		content = "Error: " + err.Error()
	}

	// 占位符和回复在同一次更新里切换
	s.update(func() {
		s.loading = false
		s.transcript.Append(newMessage(RoleAssistant, content, s.now()))
	})
	return nil
}

// GenerateReport 重新检查连接，由服务端渲染对话记录并交给 sink，返回保存位置
func (s *Session) GenerateReport(ctx context.Context, sink Downloader) (string, error) {
	if !s.CheckConnection(ctx) {
		return "", ErrDisconnected
	}

	pdf, err := s.backend.Report(ctx, s.transcript.Entries())
	if err != nil {
		s.appendMessage(RoleAssistant, "Error generating PDF: "+err.Error())
		return "", err
	}

	location, err := sink.Save(ReportFilename, pdf)
	if err != nil {
		s.appendMessage(RoleAssistant, "Error generating PDF: "+err.Error())
		return "", err
	}
	return location, nil
}

// Listen 识别一句话后立即发送
func (s *Session) Listen(ctx context.Context) error {
	if s.speech == nil || !s.speech.Supported() {
		s.appendMessage(RoleAssistant, SpeechUnsupportedMessage)
		return nil
	}

	text, err := s.speech.Listen(ctx)
	if err != nil {
		s.appendMessage(RoleAssistant, "Error: "+err.Error())
		return err
	}

	s.SetInput(text)
	return s.Send(ctx)
}
