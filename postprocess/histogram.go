package postprocess

// MaxDepth is the fixed depth ceiling in millimetres.  Raw samples at or
// beyond the ceiling are ignored, the Kinect style sensors this targets
// never report usable readings that far out
const MaxDepth = 10000

// DepthHistogram converts raw 16-bit depth samples into equalized
// intensities using a cumulative histogram rebuilt every frame.  Nearer
// surfaces map to higher intensities.  The table is owned by a single
// goroutine and reused across frames, Update fully overwrites it
type DepthHistogram struct {
	table []float32
	// maxDepth is the largest sample seen in the last Update, tracked so
	// the next Update only has to reset the table range that was written
	maxDepth  int
	numPoints int
}

// NewDepthHistogram creates a histogram with the fixed MaxDepth ceiling
func NewDepthHistogram() *DepthHistogram {
	return &DepthHistogram{
		table: make([]float32, MaxDepth),
	}
}

// Update rebuilds the equalization table from one frame of depth samples.
// A sample value of 0 means no reading and is excluded, as is anything at
// or beyond the ceiling
func (h *DepthHistogram) Update(depth []uint16) {

	// reset the range written by the previous frame.  resetting only up
	// to the old maxDepth is why stale tail values can never leak into
	// this frame's table
	for i := 0; i <= h.maxDepth && i < len(h.table); i++ {
		h.table[i] = 0
	}

	h.maxDepth = 0
	h.numPoints = 0

	for _, v := range depth {
		d := int(v)

		if d > h.maxDepth && d < MaxDepth {
			h.maxDepth = d
		}

		if d != 0 && d < MaxDepth {
			h.table[d]++
			h.numPoints++
		}
	}

	// cumulative depth count, skipping the no-reading bucket at 0
	for i := 1; i <= h.maxDepth; i++ {
		h.table[i] += h.table[i-1]
	}

	// invert and normalize to 0.0-1.0 so nearer depths come out brighter.
	// an empty frame (numPoints == 0) leaves the whole table at zero
	if h.numPoints > 0 {
		n := float32(h.numPoints)
		for i := 1; i <= h.maxDepth; i++ {
			h.table[i] = 1.0 - (h.table[i] / n)
		}
	}
}

// Intensity returns the equalized intensity in 0.0-1.0 for a raw depth
// sample.  Zero and out of range samples always return 0
func (h *DepthHistogram) Intensity(v uint16) float32 {
	if v == 0 || int(v) >= MaxDepth {
		return 0
	}
	return h.table[v]
}

// Level returns the equalized intensity as an 8-bit level for grayscale
// and palette indexed rendering.  The top of the range clamps to 255
func (h *DepthHistogram) Level(v uint16) uint8 {
	l := int(256 * h.Intensity(v))
	if l > 255 {
		l = 255
	}
	return uint8(l)
}

// NumPoints is the count of valid samples in the last Update
func (h *DepthHistogram) NumPoints() int {
	return h.numPoints
}

// Levels fills dst with the 8-bit equalized level of every sample, for
// the grayscale viewer variant.  dst must be the same length as depth
func (h *DepthHistogram) Levels(depth []uint16, dst []uint8) {
	for i, v := range depth {
		dst[i] = h.Level(v)
	}
}
