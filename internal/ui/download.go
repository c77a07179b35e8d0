package ui

import (
	"fmt"
	"os"
	"path/filepath"
)

// Downloader 接收生成好的报告，Save 返回最终保存位置
type Downloader interface {
	Save(name string, data []byte) (string, error)
}

// FileDownloader 把报告写到磁盘。Path 为空时以建议文件名保存到工作目录，
// Path 是目录时保存到该目录下
type FileDownloader struct {
	Path string
}

func (d FileDownloader) Save(name string, data []byte) (string, error) {
	target := name
	if d.Path != "" {
		target = d.Path
		if info, err := os.Stat(d.Path); err == nil && info.IsDir() {
			target = filepath.Join(d.Path, name)
		}
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create report directory: %w", err)
		}
	}

	// 先写临时文件再改名，失败时不会留下半个 PDF
	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return target, nil
}
