// Package report 把对话记录排版为分页文档
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"researchai/internal/model"
	"researchai/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TimestampLayout 对应页面上 "M/D/YYYY, h:mm:ss PM" 的时间格式
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Canvas 按顺序接收报告的排版操作
type Canvas interface {
	Title(text string)
	Subtitle(text string)
	Label(text string)
	Body(text string)
	PageBreak()
}

// Layout 先写标题块，再为每条记录写一个带标签的块；
// 记录之间分页，最后一条之后不分页
func Layout(c Canvas, title string, generated time.Time, entries []model.TranscriptEntry) {
	c.Title(title)
	c.Subtitle("Generated: " + generated.Format(TimestampLayout))

	for i, entry := range entries {
		c.Label(strings.ToUpper(entry.Role) + ":")
		c.Body(entry.Content)
		if i < len(entries)-1 {
			c.PageBreak()
		}
	}
}

// Renderer 生成 PDF 报告
type Renderer struct {
	title  string
	now    func() time.Time
	tracer trace.Tracer
}

func NewRenderer(title string) *Renderer {
	return &Renderer{
		title:  title,
		now:    time.Now,
		tracer: otel.Tracer(telemetry.InstrumentationName),
	}
}

// Render 排版对话记录并返回编码后的 PDF
func (r *Renderer) Render(ctx context.Context, entries []model.TranscriptEntry) (out []byte, err error) {
	_, span := r.tracer.Start(ctx, "report.render",
		trace.WithAttributes(attribute.Int("report.entries", len(entries))))
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render panicked: %v", rec)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	doc := NewPDF(r.title)
	Layout(doc, r.title, r.now(), entries)

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.pages", doc.Pages()))
	return buf.Bytes(), nil
}
