package plot

import (
	"bytes"
	"encoding/base64"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"CupSentinel/internal/model"
)

// Artifact is one rendered chart.
type Artifact struct {
	Company model.Company
	Format  string
	Data    []byte
}

// Base64 returns the chart bytes in standard base64, as embedded in API
// responses.
func (a *Artifact) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// Encoder turns a finished plot into bytes of one image format.
type Encoder interface {
	Encode(p *gplot.Plot) ([]byte, error)
	Format() string
}

// PNGEncoder writes PNG images of a fixed size.
type PNGEncoder struct {
	Width, Height vg.Length
}

func NewPNGEncoder(widthIn, heightIn float64) PNGEncoder {
	if widthIn <= 0 {
		widthIn = 12
	}
	if heightIn <= 0 {
		heightIn = 6
	}
	return PNGEncoder{Width: vg.Length(widthIn) * vg.Inch, Height: vg.Length(heightIn) * vg.Inch}
}

func (e PNGEncoder) Format() string { return "png" }

func (e PNGEncoder) Encode(p *gplot.Plot) ([]byte, error) {
	w, err := p.WriterTo(e.Width, e.Height, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
