package deck

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry for A4 portrait export, in millimeters. The layout is
// deliberately simple: caption block on top, image fit into the
// remaining box, one slide per page.
const (
	pageMargin   = 15.0
	captionSize  = 13.0
	titleSize    = 22.0
	imageBoxGap  = 8.0
	lineHeightMM = 6.5
)

// WritePDF renders the deck to w, one slide per page, preceded by a
// title page.
func WritePDF(d *Deck, w io.Writer) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Topic, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	boxW := pageW - 2*pageMargin

	// title page
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetY(pageH / 3)
	pdf.MultiCell(boxW, 10, tr(d.Topic), "", "C", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(6)
	pdf.MultiCell(boxW, 6, tr(fmt.Sprintf("%d slides · generated %s", len(d.Slides), d.CreatedAt.Format("2006-01-02"))), "", "C", false)

	for i, s := range d.Slides {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", captionSize)
		pdf.SetY(pageMargin)
		pdf.MultiCell(boxW, lineHeightMM, tr(CaptionText(s.Caption)), "", "L", false)

		imgTop := pdf.GetY() + imageBoxGap
		boxH := pageH - pageMargin - imgTop
		if boxH <= 0 {
			return fmt.Errorf("slide %d: caption leaves no room for the image", i)
		}
		if err := placeImage(pdf, i, s.Image.MIMEType, s.Image.Data, pageMargin, imgTop, boxW, boxH); err != nil {
			return fmt.Errorf("slide %d: %w", i, err)
		}
	}

	return pdf.Output(w)
}

// placeImage registers the image bytes and draws them centered,
// fit-to-box with preserved aspect ratio.
func placeImage(pdf *fpdf.Fpdf, idx int, mime string, data []byte, x, y, boxW, boxH float64) error {
	imgType, err := imageTypeFromMIME(mime)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("slide-%d", idx)
	opts := fpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	iw, ih := info.Extent()
	if iw <= 0 || ih <= 0 {
		return fmt.Errorf("image has no extent")
	}
	scale := boxW / iw
	if s := boxH / ih; s < scale {
		scale = s
	}
	w := iw * scale
	h := ih * scale
	pdf.ImageOptions(name, x+(boxW-w)/2, y+(boxH-h)/2, w, h, false, opts, 0, "")
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}

func imageTypeFromMIME(mime string) (string, error) {
	switch mime {
	case "image/png", "":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image mime type %q", mime)
	}
}
