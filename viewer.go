package usertrack

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gokinect/go-usertrack/postprocess"
	"github.com/gokinect/go-usertrack/tracker"
	"gonum.org/v1/gonum/stat"
)

// timingWindow is the number of recent frame durations averaged for the
// stats line
const timingWindow = 120

// Snapshot is one fully processed frame published for the rendering
// side.  Every field is immutable once published, the next frame
// replaces the whole snapshot rather than mutating it in place
type Snapshot struct {
	// Pixels is the colorized RGB24 user depth map
	Pixels []uint8
	// Labels is a copy of the per pixel user label map, for silhouette
	// outlining on the rendering side
	Labels []uint16
	Width  int
	Height int

	// Users is the skeleton state of every known user this frame
	Users []tracker.UserSnapshot

	// Frame counts processed frames since Run started
	Frame int
	// AvgFrameTime is the mean equalize+colorize+skeleton time over the
	// recent timing window, display only
	AvgFrameTime time.Duration
}

// Viewer drives the frame update cycle: wait for sensor data, equalize
// and colorize the depth map, apply skeleton lifecycle events and joint
// updates, and publish the result.  Run is intended for a single
// background goroutine, the rendering side polls Latest on its own
// cadence
type Viewer struct {
	src   Source
	skels *tracker.Skeletons

	hist      *postprocess.DepthHistogram
	colorizer *postprocess.UserColorizer

	latest atomic.Pointer[Snapshot]

	quit    chan struct{}
	stop    sync.Once
	release sync.Once

	// timings is only touched by the worker goroutine
	timings []float64
	frame   int
}

// Capability pairs the per frame Source surface with the skeleton query
// surface, the simulated device implements both
type Capability interface {
	Source
	tracker.Capability
}

// NewViewer creates a viewer over the given device
func NewViewer(src Capability) *Viewer {
	hist := postprocess.NewDepthHistogram()

	return &Viewer{
		src:       src,
		skels:     tracker.NewSkeletons(src),
		hist:      hist,
		colorizer: postprocess.NewUserColorizer(hist),
		quit:      make(chan struct{}),
	}
}

// Skeletons exposes the lifecycle tracker, for tests and for callers
// that feed events from elsewhere
func (v *Viewer) Skeletons() *tracker.Skeletons {
	return v.skels
}

// Latest returns the most recently published snapshot, nil before the
// first frame completes
func (v *Viewer) Latest() *Snapshot {
	return v.latest.Load()
}

// Stop requests a cooperative shutdown.  The worker finishes its current
// frame, releases the source, and Run returns
func (v *Viewer) Stop() {
	v.stop.Do(func() {
		close(v.quit)
	})
}

// Run blocks driving the frame loop until Stop is called or the source
// fails.  A single transient wait failure is retried once before the
// loop gives up, and the source is released exactly once on every exit
// path
func (v *Viewer) Run() error {
	defer v.releaseSource()

	for {
		select {
		case <-v.quit:
			return nil
		default:
		}

		if err := v.src.WaitFrame(WaitAll); err != nil {
			log.Printf("frame wait failed, retrying once: %v", err)

			if err = v.src.WaitFrame(WaitAll); err != nil {
				return &SourceError{Op: "wait", Err: err}
			}
		}

		start := time.Now()
		v.processFrame()
		v.recordTiming(time.Since(start))
	}
}

// processFrame runs one iteration of the pipeline and publishes the
// replacement snapshot
func (v *Viewer) processFrame() {

	width, height := v.src.Bounds()
	depth := v.src.DepthFrame()
	labels := v.src.UserLabelFrame()

	v.hist.Update(depth)

	// the pixel buffer becomes part of the published snapshot, so it is
	// a fresh allocation rather than a recycled scratch buffer
	pixels := make([]uint8, len(depth)*3)

	if err := v.colorizer.Colorize(depth, labels, pixels); err != nil {
		// mismatched stream geometry, skip the visual for this frame
		log.Printf("colorize: %v", err)
		pixels = nil
	}

	labelsCopy := make([]uint16, len(labels))
	copy(labelsCopy, labels)

	for _, ev := range v.src.Events() {
		v.skels.Queue(ev)
	}
	v.skels.Update()

	v.frame++

	v.latest.Store(&Snapshot{
		Pixels:       pixels,
		Labels:       labelsCopy,
		Width:        width,
		Height:       height,
		Users:        v.skels.Snapshot(),
		Frame:        v.frame,
		AvgFrameTime: v.avgFrameTime(),
	})
}

// recordTiming keeps a sliding window of frame durations
func (v *Viewer) recordTiming(d time.Duration) {
	v.timings = append(v.timings, float64(d))
	if len(v.timings) > timingWindow {
		v.timings = v.timings[1:]
	}
}

// avgFrameTime is the mean duration over the timing window
func (v *Viewer) avgFrameTime() time.Duration {
	if len(v.timings) == 0 {
		return 0
	}
	return time.Duration(stat.Mean(v.timings, nil))
}

// releaseSource closes the sensor source exactly once
func (v *Viewer) releaseSource() {
	v.release.Do(func() {
		if err := v.src.Close(); err != nil {
			log.Printf("closing source: %v", err)
		}
	})
}
