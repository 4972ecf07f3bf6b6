/*
Example code showing the depth viewer variants: the grayscale equalized
depth map, the IR stream with a heat colormap, and the translucent
spectrum colored depth overlaid on the camera image.
*/
package main

import (
	"flag"
	"log"

	"github.com/gokinect/go-usertrack"
	"github.com/gokinect/go-usertrack/postprocess"
	"github.com/gokinect/go-usertrack/render"
	"github.com/maruel/interrupt"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	width := flag.Int("x", 640, "Map output width")
	height := flag.Int("y", 480, "Map output height")
	mode := flag.String("mode", "overlay", "View mode [depth|ir|overlay]")

	flag.Parse()

	interrupt.HandleCtrlC()

	params := usertrack.DefaultSimParams()
	params.Width = *width
	params.Height = *height

	src, err := usertrack.NewSimSource(params)

	if err != nil {
		log.Fatal("Error creating sim source: ", err)
	}

	defer src.Close()

	n := *width * *height

	hist := postprocess.NewDepthHistogram()
	spectrum := postprocess.NewSpectrum(0x88)

	// scratch buffers recycled frame to frame
	pool := postprocess.NewBufferPool()

	if err := pool.Create("levels", n); err != nil {
		log.Fatal("Error creating buffer pool: ", err)
	}

	if err := pool.Create("overlay", n*4); err != nil {
		log.Fatal("Error creating buffer pool: ", err)
	}

	window := gocv.NewWindow("Kinect Viewer")
	defer window.Close()

	font := render.DefaultFont()
	frame := 0

	for !interrupt.IsSet() {

		if err := src.WaitFrame(usertrack.WaitAll); err != nil {
			// retry the wait once before giving up
			log.Printf("Frame wait failed, retrying: %v", err)

			if err = src.WaitFrame(usertrack.WaitAll); err != nil {
				log.Printf("Sensor source failed: %v", err)
				break
			}
		}

		frame++

		img, err := buildView(src, *mode, hist, spectrum, pool)

		if err != nil {
			log.Printf("Error building view: %v", err)
			continue
		}

		render.Stats(&img, frame, 0, font)

		window.IMShow(img)
		img.Close()

		// ESC quits
		if window.WaitKey(33) == 27 {
			break
		}
	}

	log.Println("done")
}

// buildView converts the current frame into a displayable BGR mat for
// the selected view mode
func buildView(src *usertrack.SimSource, mode string,
	hist *postprocess.DepthHistogram, spectrum *postprocess.Spectrum,
	pool *postprocess.BufferPool) (gocv.Mat, error) {

	width, height := src.Bounds()
	n := width * height

	switch mode {

	case "ir":
		// 10-bit IR samples scaled down to 8 bits, heat mapped
		levels := pool.Get("levels", n)
		defer pool.Put("levels", levels)

		for i, v := range src.IRFrame() {
			levels[i] = uint8(v >> 2)
		}

		gray, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, levels)

		if err != nil {
			return gocv.NewMat(), err
		}

		defer gray.Close()

		img := gocv.NewMat()
		gocv.ApplyColorMap(gray, &img, gocv.ColormapHot)
		return img, nil

	case "depth":
		levels := pool.Get("levels", n)
		defer pool.Put("levels", levels)

		hist.Update(src.DepthFrame())
		hist.Levels(src.DepthFrame(), levels)

		gray, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, levels)

		if err != nil {
			return gocv.NewMat(), err
		}

		defer gray.Close()

		img := gocv.NewMat()
		gocv.CvtColor(gray, &img, gocv.ColorGrayToBGR)
		return img, nil

	default:
		// translucent spectrum depth over the camera image
		levels := pool.Get("levels", n)
		defer pool.Put("levels", levels)

		hist.Update(src.DepthFrame())
		hist.Levels(src.DepthFrame(), levels)

		overlay := pool.Get("overlay", n*4)
		defer pool.Put("overlay", overlay)

		spectrum.Colorize(levels, overlay)

		rgba, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, overlay)

		if err != nil {
			return gocv.NewMat(), err
		}

		defer rgba.Close()

		overlayBGR := gocv.NewMat()
		defer overlayBGR.Close()
		gocv.CvtColor(rgba, &overlayBGR, gocv.ColorRGBAToBGR)

		camera, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, src.ColorFrame())

		if err != nil {
			return gocv.NewMat(), err
		}

		defer camera.Close()

		cameraBGR := gocv.NewMat()
		defer cameraBGR.Close()
		gocv.CvtColor(camera, &cameraBGR, gocv.ColorBGRToRGB)

		// 0x88 alpha comes out close to a 53/47 blend
		img := gocv.NewMat()
		gocv.AddWeighted(cameraBGR, 0.47, overlayBGR, 0.53, 0, &img)
		return img, nil
	}
}
