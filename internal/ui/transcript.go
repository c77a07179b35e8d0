package ui

import (
	"sync"

	"researchai/internal/model"
)

// Transcript 是单个会话有序、只追加的消息列表
type Transcript struct {
	messages []Message
	mu       sync.RWMutex
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, msg)
}

// Messages 按插入顺序返回副本
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	messages := make([]Message, len(t.messages))
	copy(messages, t.messages)
	return messages
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.messages)
}

// Entries 去除标记后转换为报告渲染所需的记录
func (t *Transcript) Entries() []model.TranscriptEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]model.TranscriptEntry, len(t.messages))
	for i, msg := range t.messages {
		entries[i] = model.TranscriptEntry{
			Role:    string(msg.Role),
			Content: StripMarkup(msg.Content),
		}
	}
	return entries
}
