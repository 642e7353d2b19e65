package forensics

import (
	"image"
	"math"
)

// Pixel statistics over image.Gray. The raster math is written directly
// against the Pix slice; Stride accounts for sub-rectangles.

func meanVariance(img *image.Gray, r image.Rectangle) (mean, variance float64) {
	n := float64(r.Dx() * r.Dy())
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			sum += float64(row[x-img.Rect.Min.X])
		}
	}
	mean = sum / n

	var sq float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			d := float64(row[x-img.Rect.Min.X]) - mean
			sq += d * d
		}
	}
	return mean, sq / n
}

// histogramEntropy computes the Shannon entropy (bits) of the intensity
// histogram. Natural photos sit near 7 bits; flat synthetic fills much lower.
func histogramEntropy(img *image.Gray) float64 {
	var hist [256]float64
	bounds := img.Rect
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return 0
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			hist[row[x]]++
		}
	}

	var entropy float64
	for _, count := range hist {
		if count == 0 {
			continue
		}
		p := count / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// gradientEdges returns a binary edge map thresholded on Sobel gradient
// magnitude, plus the edge pixel ratio.
func gradientEdges(img *image.Gray, threshold float64) ([]bool, float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	edges := make([]bool, w*h)
	if w < 3 || h < 3 {
		return edges, 0
	}

	px := func(x, y int) float64 {
		return float64(img.Pix[y*img.Stride+x])
	}

	edgeCount := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			if math.Sqrt(gx*gx+gy*gy) > threshold {
				edges[y*w+x] = true
				edgeCount++
			}
		}
	}

	return edges, float64(edgeCount) / float64(w*h)
}

// boundingBoxes labels 8-connected components of the edge map and returns
// their bounding rectangles.
func boundingBoxes(edges []bool, w, h int) []image.Rectangle {
	visited := make([]bool, len(edges))
	var boxes []image.Rectangle
	var stack []int

	for start := range edges {
		if !edges[start] || visited[start] {
			continue
		}

		minX, minY := w, h
		maxX, maxY := 0, 0
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w

			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if edges[nidx] && !visited[nidx] {
						visited[nidx] = true
						stack = append(stack, nidx)
					}
				}
			}
		}

		boxes = append(boxes, image.Rect(minX, minY, maxX+1, maxY+1))
	}

	return boxes
}

// normalizedCorrelation computes zero-mean normalized cross-correlation
// between two same-sized patches. Returns 0 when either patch is flat.
func normalizedCorrelation(img *image.Gray, a, b image.Point, size int) float64 {
	meanA, _ := meanVariance(img, image.Rect(a.X, a.Y, a.X+size, a.Y+size))
	meanB, _ := meanVariance(img, image.Rect(b.X, b.Y, b.X+size, b.Y+size))

	var num, denA, denB float64
	for dy := 0; dy < size; dy++ {
		rowA := img.Pix[(a.Y+dy)*img.Stride:]
		rowB := img.Pix[(b.Y+dy)*img.Stride:]
		for dx := 0; dx < size; dx++ {
			da := float64(rowA[a.X+dx]) - meanA
			db := float64(rowB[b.X+dx]) - meanB
			num += da * db
			denA += da * da
			denB += db * db
		}
	}

	if denA == 0 || denB == 0 {
		return 0
	}
	return num / math.Sqrt(denA*denB)
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
