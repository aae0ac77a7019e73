// Package render draws the dashboard charts server-side with go-chart.
// Every renderer takes an aggregate result shape and writes a complete SVG
// or PNG document.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"surveydash/internal/aggregate"
)

var (
	// ErrNoData is returned when a breakdown has nothing to draw.
	ErrNoData = errors.New("render: no data")
	// ErrUnknownChart is returned by Render for an unrecognized name.
	ErrUnknownChart = errors.New("render: unknown chart")
)

// Format selects the output encoding.
type Format int

const (
	SVG Format = iota
	PNG
)

// ParseFormat maps a file extension ("svg", ".png") to a Format.
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "svg":
		return SVG, nil
	case "png":
		return PNG, nil
	}
	return SVG, fmt.Errorf("render: unsupported format %q", ext)
}

func (f Format) String() string {
	if f == PNG {
		return "png"
	}
	return "svg"
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Chart names accepted by Render.
const (
	Age     = "age"
	Gender  = "gender"
	Country = "country"
	Remote  = "remote"
)

// Names lists the charts in dashboard order.
func Names() []string { return []string{Age, Gender, Country, Remote} }

// Available lists, in dashboard order, the charts rep has data for.
// Render returns ErrNoData for every other name.
func Available(rep aggregate.Report) []string {
	var out []string
	for _, name := range Names() {
		if hasData(name, rep) {
			out = append(out, name)
		}
	}
	return out
}

func hasData(name string, rep aggregate.Report) bool {
	switch name {
	case Age:
		return len(rep.Age) > 0
	case Gender:
		return len(rep.Gender) > 0
	case Country:
		return len(rep.Countries) > 0
	case Remote:
		for _, s := range rep.Remote {
			if s.Total > 0 {
				return true
			}
		}
	}
	return false
}

// Render draws the named chart from rep.
func Render(w io.Writer, name string, rep aggregate.Report, f Format) error {
	switch name {
	case Age:
		return AgeChart(w, rep.Age, f)
	case Gender:
		return GenderChart(w, rep.Gender, f)
	case Country:
		return CountryChart(w, rep.Countries, f)
	case Remote:
		return RemoteChart(w, rep.Remote, f)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// RenderAll draws every chart concurrently. Charts without data are left
// out of the result rather than failing the batch.
func RenderAll(ctx context.Context, rep aggregate.Report, f Format) (map[string][]byte, error) {
	names := Names()
	out := make([][]byte, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			err := Render(&buf, name, rep, f)
			switch {
			case errors.Is(err, ErrNoData):
				return nil
			case err != nil:
				return fmt.Errorf("render %s: %w", name, err)
			}
			out[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	charts := make(map[string][]byte, len(names))
	for i, name := range names {
		if out[i] != nil {
			charts[name] = out[i]
		}
	}
	return charts, nil
}
