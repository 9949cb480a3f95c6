package query

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Formatter streams query Results to an io.Writer. The framing layer owns
// flush-and-close; a Formatter only ever appends.
type Formatter interface {
	WriteHeader(w io.Writer) error
	WriteRecord(w io.Writer, r Result) error
	WriteFooter(w io.Writer) error
}

// fields returns a Result's CDX fields in the stable legacy-CDX order.
func fields(r Result) []string {
	c := r.Capture
	return []string{
		c.UrlKey,
		strconv.FormatUint(c.Timestamp, 10),
		r.DisplayURL,
		c.MimeType,
		strconv.Itoa(c.Status),
		c.Digest,
		c.RedirectUrl,
		c.RobotFlags,
		strconv.FormatUint(c.Length, 10),
		strconv.FormatUint(c.Offset, 10),
		c.File,
	}
}

// TextFormatter writes newline-separated, space-separated CDX lines -
// legacy CDX's own wire format, reused as one of the two WB-CDX output modes.
type TextFormatter struct{ wroteAny bool }

func (f *TextFormatter) WriteHeader(w io.Writer) error { return nil }

func (f *TextFormatter) WriteRecord(w io.Writer, r Result) error {
	fs := fields(r)
	line := fs[0]
	for _, v := range fs[1:] {
		line += " " + v
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}

func (f *TextFormatter) WriteFooter(w io.Writer) error { return nil }

// JSONFormatter writes a WB-CDX JSON array of per-record arrays.
type JSONFormatter struct{ wroteAny bool }

func (f *JSONFormatter) WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, "[")
	return err
}

func (f *JSONFormatter) WriteRecord(w io.Writer, r Result) error {
	prefix := ""
	if f.wroteAny {
		prefix = ","
	}
	f.wroteAny = true
	data, err := json.Marshal(fields(r))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s", prefix, data)
	return err
}

func (f *JSONFormatter) WriteFooter(w io.Writer) error {
	_, err := io.WriteString(w, "]")
	return err
}

// xmlResults/xmlResult model OpenWayback's legacy `?q=` XML response shape.
type xmlResults struct {
	XMLName xml.Name    `xml:"wayback"`
	Results []xmlResult `xml:"results>result"`
}

type xmlResult struct {
	CompressedOffset string `xml:"compressedoffset"`
	MimeType         string `xml:"mimetype"`
	File              string `xml:"file"`
	Redirect         string `xml:"redirecturl"`
	URLKey           string `xml:"urlkey"`
	Digest           string `xml:"digest"`
	HttpCode         string `xml:"httpcode"`
	Original         string `xml:"url"`
	Capturedate      string `xml:"capturedate"`
}

// XMLFormatter writes OpenWayback-style XML, buffering records in memory
// and emitting the whole document on WriteFooter (XML, unlike the JSON and
// text formats, has no convenient incremental-array form).
type XMLFormatter struct{ results []xmlResult }

func (f *XMLFormatter) WriteHeader(w io.Writer) error { return nil }

func (f *XMLFormatter) WriteRecord(w io.Writer, r Result) error {
	c := r.Capture
	f.results = append(f.results, xmlResult{
		CompressedOffset: strconv.FormatUint(c.Offset, 10),
		MimeType:         c.MimeType,
		File:             c.File,
		Redirect:         c.RedirectUrl,
		URLKey:           c.UrlKey,
		Digest:           c.Digest,
		HttpCode:         strconv.Itoa(c.Status),
		Original:         r.DisplayURL,
		Capturedate:      strconv.FormatUint(c.Timestamp, 10),
	})
	return nil
}

func (f *XMLFormatter) WriteFooter(w io.Writer) error {
	doc := xmlResults{Results: f.results}
	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

// NewFormatter picks a Formatter for the requested output mode
// ("json", "text", or "xml"); unrecognised modes default to text.
func NewFormatter(output string) Formatter {
	switch output {
	case "json":
		return &JSONFormatter{}
	case "xml":
		return &XMLFormatter{}
	default:
		return &TextFormatter{}
	}
}
