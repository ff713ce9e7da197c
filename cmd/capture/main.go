// turntable-capture takes one RGB+depth shot from a specific Kinect and
// writes the capture artifacts to the working directory. It runs as a
// short-lived subprocess of the coordinator so a wedged SDK call cannot
// hang the interactive session.
package main

import (
	"fmt"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"

	"github.com/plantlab/turntable-rig/pkg/freenect2"
	"github.com/plantlab/turntable-rig/pkg/kinect"
)

type Args struct {
	Filename string `arg:"positional" help:"label to include in saved files"`
	Count    int    `arg:"positional" help:"plant number for file naming"`
	Serial   string `arg:"--serial" help:"target kinect serial number"`
	Dir      string `arg:"--dir" help:"directory to save artifacts into"`
	Filtered bool   `arg:"--filtered" help:"also save filtered depth artifacts"`
}

func procArgs() Args {
	args := Args{
		Filename: "default",
		Count:    1,
		Serial:   "006158144547",
		Dir:      ".",
	}
	arg.MustParse(&args)
	return args
}

func main() {
	if err := runMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMain() error {
	log.SetFlags(0)
	args := procArgs()

	log.Printf("Initializing capture for kinect serial %s", args.Serial)
	log.Printf("Using filename %q for plant number %d", args.Filename, args.Count)

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

	log.Println("Capturing frames...")
	pair, err := session.CaptureOne()
	if err != nil {
		return err
	}

	set, err := kinect.Save(pair, args.Filename, args.Count, args.Dir)
	if err != nil {
		return err
	}
	log.Println("Saved capture:")
	log.Printf("  RGB:   %s / %s", set.RGBJPEG, set.RGBRaw)
	log.Printf("  Depth: %s / %s", set.DepthJPEG, set.DepthRaw)

	if args.Filtered {
		if err := kinect.SaveFiltered(pair, args.Filename, args.Count, args.Dir); err != nil {
			return err
		}
		log.Println("Saved filtered depth artifacts")
	}

	log.Println("Capture completed successfully")
	return nil
}
