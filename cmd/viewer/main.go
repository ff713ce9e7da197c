// turntable-viewer shows a live RGB feed from one Kinect for aiming the
// cameras. Press q or ESC to quit.
package main

import (
	"fmt"
	"image"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	"gocv.io/x/gocv"

	"github.com/plantlab/turntable-rig/pkg/freenect2"
	"github.com/plantlab/turntable-rig/pkg/kinect"
)

type Args struct {
	Serial string `arg:"--serial" help:"target kinect serial number"`
}

func main() {
	if err := runMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMain() error {
	log.SetFlags(0)
	args := Args{Serial: "006158144547"}
	arg.MustParse(&args)

	driver := freenect2.NewDriver()
	defer driver.Close()

	session := kinect.NewSession(driver)
	defer session.Stop()

	if err := session.Select(args.Serial); err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	window := gocv.NewWindow("RGB Stream")
	defer window.Close()

	log.Println("Starting RGB stream, press 'q' or ESC to quit")
	frameCount := 0
	for {
		pair, err := session.CaptureOne()
		if err != nil {
			return err
		}

		mat, err := gocv.NewMatFromBytes(pair.RGB.Height, pair.RGB.Width, gocv.MatTypeCV8UC3, pair.RGB.Pix)
		if err != nil {
			return err
		}
		display := gocv.NewMat()
		gocv.Resize(mat, &display, image.Pt(640, 480), 0, 0, gocv.InterpolationLinear)
		window.IMShow(display)
		mat.Close()
		display.Close()

		frameCount++
		if frameCount%30 == 0 {
			log.Printf("Received %d RGB frames", frameCount)
		}

		key := window.WaitKey(1)
		if key == 'q' || key == 27 {
			return nil
		}
	}
}
