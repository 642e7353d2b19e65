package forensics

import (
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"
)

// signalResult is one detector's vote. A detector that cannot run reports
// itself as not fired with a diagnostic reason instead of aborting the
// whole analysis.
type signalResult struct {
	fired  bool
	reason string
}

var editorMarkers = []string{"photoshop", "gimp", "paint.net", "pixelmator", "snapseed", "canva"}

var exifTimestampPattern = regexp.MustCompile(`\d{4}:\d{2}:\d{2} \d{2}:\d{2}:\d{2}`)

// checkMetadata scans embedded metadata text for editing-software markers
// and timestamps in the future. Absent metadata is normal for mobile
// screenshots and is not suspicious.
func (a *Analyzer) checkMetadata(data []byte, now time.Time) signalResult {
	haystack := strings.ToLower(string(data))

	var suspicious []string
	for _, marker := range editorMarkers {
		if strings.Contains(haystack, marker) {
			suspicious = append(suspicious, fmt.Sprintf("editing software marker %q", marker))
			break
		}
	}

	for _, ts := range exifTimestampPattern.FindAllString(string(data), 4) {
		t, err := time.Parse("2006:01:02 15:04:05", ts)
		if err != nil {
			continue
		}
		if t.After(now.Add(24 * time.Hour)) {
			suspicious = append(suspicious, fmt.Sprintf("future timestamp in metadata: %s", ts))
			break
		}
	}

	if len(suspicious) > 0 {
		return signalResult{fired: true, reason: "metadata inconsistencies: " + strings.Join(suspicious, "; ")}
	}
	return signalResult{reason: "metadata appears normal"}
}

// checkNoise compares global variance and entropy against floors, and the
// spread of per-quadrant variance against a ceiling. Localized retouching
// shows up as variance diverging across quadrants.
func (a *Analyzer) checkNoise(img *image.Gray) signalResult {
	_, variance := meanVariance(img, img.Rect)
	entropy := histogramEntropy(img)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	quadrants := []image.Rectangle{
		image.Rect(0, 0, w/2, h/2),
		image.Rect(w/2, 0, w, h/2),
		image.Rect(0, h/2, w/2, h),
		image.Rect(w/2, h/2, w, h),
	}
	variances := make([]float64, 0, len(quadrants))
	for _, q := range quadrants {
		_, v := meanVariance(img, q)
		variances = append(variances, v)
	}
	spread := stddev(variances)

	var issues []string
	if variance < a.cfg.MinVariance {
		issues = append(issues, "unusually low noise variance")
	}
	if entropy < a.cfg.MinEntropy {
		issues = append(issues, "low histogram entropy")
	}
	if spread > a.cfg.MaxQuadrantVarianceStd {
		issues = append(issues, "inconsistent noise across quadrants")
	}

	if len(issues) > 0 {
		return signalResult{fired: true, reason: "noise pattern issues: " + strings.Join(issues, "; ")}
	}
	return signalResult{reason: "noise patterns appear normal"}
}

// Plausible glyph bounding-box size range, in pixels.
const (
	glyphMinW, glyphMaxW = 10, 200
	glyphMinH, glyphMaxH = 10, 50
)

// checkFontConsistency finds edge-bounded regions shaped like text glyphs
// and flags inconsistent type sizes, which suggest pasted-in text.
func (a *Analyzer) checkFontConsistency(img *image.Gray) signalResult {
	edges, _ := gradientEdges(img, a.cfg.EdgeGradientThreshold)
	boxes := boundingBoxes(edges, img.Rect.Dx(), img.Rect.Dy())

	var heights []float64
	for _, box := range boxes {
		w, h := box.Dx(), box.Dy()
		if w > glyphMinW && w < glyphMaxW && h > glyphMinH && h < glyphMaxH {
			heights = append(heights, float64(h))
		}
	}

	if len(heights) < 3 {
		return signalResult{reason: "insufficient text regions for font analysis"}
	}

	var sum float64
	for _, h := range heights {
		sum += h
	}
	mean := sum / float64(len(heights))

	if stddev(heights) > mean*a.cfg.FontHeightSpreadRatio {
		return signalResult{fired: true, reason: "inconsistent font sizes detected"}
	}
	return signalResult{reason: "font sizes appear consistent"}
}

const compressionBlockSize = 8

// checkCompression measures intensity discontinuity at fixed block
// boundaries; a high fraction of hard jumps indicates recompression or
// splicing.
func (a *Analyzer) checkCompression(img *image.Gray) signalResult {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 2*compressionBlockSize || h < 2*compressionBlockSize {
		return signalResult{reason: "image too small for compression analysis"}
	}

	artifacts, boundaries := 0, 0
	for y := 0; y+compressionBlockSize < h; y += compressionBlockSize {
		for x := 0; x+compressionBlockSize < w; x += compressionBlockSize {
			if x > 0 {
				var diff float64
				for dy := 0; dy < compressionBlockSize; dy++ {
					row := img.Pix[(y+dy)*img.Stride:]
					d := float64(row[x]) - float64(row[x-1])
					if d < 0 {
						d = -d
					}
					diff += d
				}
				if diff/compressionBlockSize > a.cfg.BlockEdgeJump {
					artifacts++
				}
				boundaries++
			}
			if y > 0 {
				var diff float64
				rowAbove := img.Pix[(y-1)*img.Stride:]
				row := img.Pix[y*img.Stride:]
				for dx := 0; dx < compressionBlockSize; dx++ {
					d := float64(row[x+dx]) - float64(rowAbove[x+dx])
					if d < 0 {
						d = -d
					}
					diff += d
				}
				if diff/compressionBlockSize > a.cfg.BlockEdgeJump {
					artifacts++
				}
				boundaries++
			}
		}
	}

	if boundaries == 0 {
		return signalResult{reason: "no block boundaries to analyze"}
	}
	ratio := float64(artifacts) / float64(boundaries)
	if ratio > a.cfg.BlockArtifactRatio {
		return signalResult{fired: true, reason: fmt.Sprintf("high compression artifacts detected (%.1f%% of block boundaries)", ratio*100)}
	}
	return signalResult{reason: "compression artifacts appear normal"}
}

// checkDuplicateRegions runs windowed correlation between non-overlapping
// sampled patches; a near-perfect correlation between distant patches
// indicates a cloned region, e.g. a duplicated amount digit. This is the
// most expensive signal and degrades roughly quadratically with sampled
// resolution; callers should budget wall-clock time around it.
func (a *Analyzer) checkDuplicateRegions(img *image.Gray) signalResult {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	size := min(50, w/4, h/4)
	if size < 8 {
		return signalResult{reason: "image too small for duplicate-region analysis"}
	}

	stride := size / 2
	duplicates, comparisons := 0, 0

	for y1 := 0; y1+size <= h; y1 += stride {
		for x1 := 0; x1+size <= w; x1 += stride {
			for y2 := y1 + size; y2+size <= h; y2 += stride {
				for x2 := 0; x2+size <= w; x2 += stride {
					if overlaps(x1, y1, x2, y2, size) {
						continue
					}
					corr := normalizedCorrelation(img, image.Pt(x1, y1), image.Pt(x2, y2), size)
					if corr > a.cfg.DuplicateCorrelation {
						duplicates++
					}
					comparisons++
				}
			}
		}
	}

	if comparisons == 0 {
		return signalResult{reason: "no patch pairs to compare"}
	}
	ratio := float64(duplicates) / float64(comparisons)
	if ratio > a.cfg.DuplicateRatio {
		return signalResult{fired: true, reason: fmt.Sprintf("duplicate regions detected (%.1f%% of patch pairs)", ratio*100)}
	}
	return signalResult{reason: "no significant duplicate regions found"}
}

func overlaps(x1, y1, x2, y2, size int) bool {
	return x1 < x2+size && x1+size > x2 && y1 < y2+size && y1+size > y2
}

// checkEdgeDensity flags near-blank/over-smoothed images (abnormally few
// edges) and over-sharpened ones (abnormally many).
func (a *Analyzer) checkEdgeDensity(img *image.Gray) signalResult {
	_, density := gradientEdges(img, a.cfg.EdgeGradientThreshold)

	if density < a.cfg.MinEdgeDensity {
		return signalResult{fired: true, reason: "unusually low edge density"}
	}
	if density > a.cfg.MaxEdgeDensity {
		return signalResult{fired: true, reason: "unusually high edge density"}
	}
	return signalResult{reason: "edge density appears normal"}
}
