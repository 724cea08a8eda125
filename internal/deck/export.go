package deck

import (
	"encoding/base64"
	"fmt"
	"html"
	"io"
)

// WriteMarkdown renders the deck as a standalone markdown document with
// images embedded as data URIs, so the export needs no side files.
func WriteMarkdown(d *Deck, w io.Writer) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if _, err := fmt.Fprintf(w, "# %s\n\n", d.Topic); err != nil {
		return err
	}
	for i, s := range d.Slides {
		uri := fmt.Sprintf("data:%s;base64,%s", s.Image.MIMEType, base64.StdEncoding.EncodeToString(s.Image.Data))
		if _, err := fmt.Fprintf(w, "%s\n\n![slide %d](%s)\n\n", s.Caption, i+1, uri); err != nil {
			return err
		}
	}
	return nil
}

// WriteHTML renders the deck as a standalone HTML page for the
// slideshow view: captions go through the markdown renderer, images
// are inlined as data URIs.
func WriteHTML(d *Deck, w io.Writer) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	title := html.EscapeString(d.Topic)
	if _, err := fmt.Fprintf(w, "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n<h1>%s</h1>\n", title, title); err != nil {
		return err
	}
	for i, s := range d.Slides {
		caption, err := RenderCaptionHTML(s.Caption)
		if err != nil {
			return fmt.Errorf("slide %d: %w", i, err)
		}
		uri := fmt.Sprintf("data:%s;base64,%s", s.Image.MIMEType, base64.StdEncoding.EncodeToString(s.Image.Data))
		if _, err := fmt.Fprintf(w, "<section>\n%s\n<img src=\"%s\" alt=\"slide %d\">\n</section>\n", caption, uri, i+1); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
