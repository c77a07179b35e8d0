package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// PDF 是基于 fpdf 的 Canvas，使用内置 Helvetica 字体
type PDF struct {
	doc       *fpdf.Fpdf
	translate func(string) string
}

func NewPDF(title string) *PDF {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(72, 72, 72)
	doc.SetAutoPageBreak(true, 72)
	doc.SetTitle(title, true)
	doc.SetCreator("ResearchAI", true)
	doc.AddPage()

	// 内置字体是 cp1252 编码
	return &PDF{doc: doc, translate: doc.UnicodeTranslatorFromDescriptor("")}
}

func (p *PDF) Title(text string) {
	p.doc.SetFont("Helvetica", "B", 20)
	p.doc.CellFormat(0, 24, p.translate(text), "", 1, "C", false, 0, "")
	p.doc.Ln(10)
}

func (p *PDF) Subtitle(text string) {
	p.doc.SetFont("Helvetica", "", 10)
	p.doc.CellFormat(0, 12, p.translate(text), "", 1, "C", false, 0, "")
	p.doc.Ln(24)
}

func (p *PDF) Label(text string) {
	p.doc.SetFont("Helvetica", "B", 12)
	p.doc.CellFormat(0, 14, p.translate(text), "", 1, "L", false, 0, "")
	p.doc.Ln(3)
}

func (p *PDF) Body(text string) {
	p.doc.SetFont("Helvetica", "", 10)
	p.doc.MultiCell(0, 12, p.translate(text), "", "L", false)
	p.doc.Ln(12)
}

func (p *PDF) PageBreak() {
	p.doc.AddPage()
}

// Pages 返回目前已写的页数
func (p *PDF) Pages() int {
	return p.doc.PageNo()
}

// Encode 输出文档；排版阶段记录的错误会在写出任何内容之前返回
func (p *PDF) Encode(w io.Writer) error {
	if err := p.doc.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("encode pdf: %w", err)
	}
	return nil
}
