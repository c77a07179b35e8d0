package ui

import (
	"context"
	"errors"
)

// SpeechSource 是可选的语音输入，没有识别能力的前端使用 NoSpeech
type SpeechSource interface {
	Supported() bool
	// Listen 阻塞直到识别出一段最终结果
	Listen(ctx context.Context) (string, error)
}

var ErrSpeechUnsupported = errors.New("speech recognition not supported")

type NoSpeech struct{}

func (NoSpeech) Supported() bool { return false }

func (NoSpeech) Listen(context.Context) (string, error) {
	return "", ErrSpeechUnsupported
}
