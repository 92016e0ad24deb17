package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"

	"karolbroda.com/lyreplay/internal/colors"
)

const (
	sampleSize    = 64
	gradientSteps = 20
	dimColor      = "#6272A4"
)

var ErrNoArtwork = errors.New("empty artwork url")

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
	Gradient  []string
}

// Fetch downloads and decodes a thumbnail. file:// URLs are read from disk.
func Fetch(ctx context.Context, client *http.Client, artworkURL string) (image.Image, error) {
	if artworkURL == "" {
		return nil, ErrNoArtwork
	}

	if strings.HasPrefix(artworkURL, "file://") {
		f, err := os.Open(strings.TrimPrefix(artworkURL, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to open artwork file: %w", err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode artwork image: %w", err)
		}
		return img, nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

type scoredColor struct {
	hex        string
	sat        float64
	brightness float64
	score      float64
}

// ExtractPalette picks three vivid colours from img with k-means and builds
// the panel gradient from the brightest and darkest of them. Images that do
// not yield enough colour fall back to DefaultPalette.
func ExtractPalette(img image.Image) Palette {
	if img == nil {
		return DefaultPalette()
	}

	small := resize.Thumbnail(sampleSize, sampleSize, img, resize.Bilinear)

	found, err := prominentcolor.KmeansWithAll(5, small, prominentcolor.ArgumentNoCropping, sampleSize, nil)
	if err != nil || len(found) < 3 {
		return DefaultPalette()
	}

	candidates := make([]scoredColor, 0, len(found))
	for _, c := range found {
		candidates = append(candidates, score(c.Color.R, c.Color.G, c.Color.B))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	picked := candidates[:3]
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].brightness > picked[j].brightness
	})

	primary := boost(picked[0])
	accent := boost(picked[1])
	secondary := boost(picked[2])

	return Palette{
		Primary:   primary,
		Secondary: secondary,
		Accent:    accent,
		Dim:       dimColor,
		Gradient:  colors.GenerateGradient(primary, secondary, gradientSteps),
	}
}

func DefaultPalette() Palette {
	return Palette{
		Primary:   "#8BA4E8",
		Secondary: "#E8A4C8",
		Accent:    "#B8A8E8",
		Dim:       dimColor,
		Gradient:  colors.GenerateGradient("#8BA4E8", "#E8A4C8", gradientSteps),
	}
}

func score(r, g, b uint32) scoredColor {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	hi := math.Max(math.Max(rf, gf), bf)
	lo := math.Min(math.Min(rf, gf), bf)

	sat := 0.0
	if hi > 0 {
		sat = (hi - lo) / hi
	}

	return scoredColor{
		hex:        colors.RGBToHex(int(r), int(g), int(b)),
		sat:        sat,
		brightness: hi,
		score:      sat * (1 - math.Abs(hi-0.6)),
	}
}

// boost lifts dark colours and mutes near-white ones so text stays readable
// on a dark terminal.
func boost(c scoredColor) string {
	switch {
	case c.brightness < 0.4 && c.brightness > 0:
		return colors.AdjustBrightness(c.hex, math.Min(0.4/c.brightness, 2.5))
	case c.brightness > 0.85:
		return colors.BlendColors(c.hex, "#A0A0A0", 0.3)
	default:
		return c.hex
	}
}
