// Package anim assembles rendered frames into one looping GIF and
// offers a best-effort size optimization pass.
package anim

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"gbmviz/internal/render"
)

// MissingFrameError reports a gap in the expected frame sequence.
// Assembly never skips a frame silently.
type MissingFrameError struct {
	T    int
	Path string
}

func (e *MissingFrameError) Error() string {
	return fmt.Sprintf("anim: missing frame %d (%s)", e.T, e.Path)
}

// Assemble reads frames 0..horizon from dir in strictly increasing
// index order and writes a single infinitely looping GIF to out with
// the given per-frame delay in hundredths of a second. Every frame
// must exist; the check runs before any decoding so a gap is reported
// as a *MissingFrameError without partial work.
func Assemble(dir, out string, horizon, delay int) error {
	paths := make([]string, horizon+1)
	for t := 0; t <= horizon; t++ {
		p := filepath.Join(dir, render.FrameName(t, horizon))
		if _, err := os.Stat(p); err != nil {
			return &MissingFrameError{T: t, Path: p}
		}
		paths[t] = p
	}

	anim := &gif.GIF{LoopCount: 0}
	for t, p := range paths {
		img, err := decodePNG(p)
		if err != nil {
			return fmt.Errorf("anim: frame %d: %w", t, err)
		}

		bounds := img.Bounds()
		pal := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(pal, bounds, img, bounds.Min)

		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, anim); err != nil {
		return err
	}
	return f.Close()
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// Optimize recompresses the GIF in place with gifsicle. It is a
// best-effort stage: callers log the error and continue, never failing
// the run over it.
func Optimize(path string) error {
	bin, err := exec.LookPath("gifsicle")
	if err != nil {
		return fmt.Errorf("anim: gifsicle not available: %w", err)
	}

	out, err := exec.Command(bin, "-O3", "--batch", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("anim: gifsicle failed: %v: %s", err, out)
	}
	return nil
}
