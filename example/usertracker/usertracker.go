/*
Example code showing the full user tracking pipeline: colorized user
depth map with skeleton overlays, driven by the simulated sensor device.
*/
package main

import (
	"flag"
	"log"
	"time"

	"github.com/gokinect/go-usertrack"
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
	headFile := flag.String("head", "../data/gorilla.png", "Head image PNG drawn over tracked users")
	numUsers := flag.Int("u", 2, "Number of simulated users")
	outlines := flag.Bool("outline", false, "Draw expanded user silhouette outlines")

	flag.Parse()

	interrupt.HandleCtrlC()

	params := usertrack.DefaultSimParams()
	params.Width = *width
	params.Height = *height
	params.Users = nil

	// stagger user entries a couple of seconds apart
	for i := 0; i < *numUsers; i++ {
		params.Users = append(params.Users, usertrack.SimUser{
			ID:         i + 1,
			EnterFrame: 1 + i*60,
			Depth:      2000 + float32(i)*600,
			Sway:       300 + float32(i)*150,
		})
	}

	src, err := usertrack.NewSimSource(params)

	if err != nil {
		log.Fatal("Error creating sim source: ", err)
	}

	viewer := usertrack.NewViewer(src)

	go func() {
		if err := viewer.Run(); err != nil {
			log.Printf("Frame loop terminated: %v", err)
			interrupt.Set()
		}
	}()

	// a missing head image degrades presentation only
	head, err := render.LoadHeadImage(*headFile, 60)

	if err != nil {
		log.Printf("Unable to load head image: %v", err)
	} else {
		defer head.Close()
		log.Printf("Loaded head image from %s", *headFile)
	}

	window := gocv.NewWindow("User Tracker")
	defer window.Close()

	font := render.DefaultFont()

	for !interrupt.IsSet() {

		snap := viewer.Latest()

		if snap == nil || snap.Pixels == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		img, err := render.FrameMat(snap.Pixels, snap.Width, snap.Height)

		if err != nil {
			log.Printf("Error building frame mat: %v", err)
			continue
		}

		if *outlines {
			render.UserOutlines(&img, snap.Labels, snap.Width, snap.Height, 1)
		}

		render.Skeletons(&img, snap.Users, src.CalibrationPose(), head, font, 3)
		render.Stats(&img, snap.Frame, snap.AvgFrameTime, font)

		window.IMShow(img)
		img.Close()

		// ESC quits
		if window.WaitKey(33) == 27 {
			break
		}
	}

	viewer.Stop()
	log.Println("done")
}
