// turntable-control is the interactive coordinator for the plant-imaging
// rig: it owns the Arduino serial link to the turntable and launches
// capture and viewer workers on demand.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	arg "github.com/alexflint/go-arg"

	"github.com/plantlab/turntable-rig/pkg/arduino"
	"github.com/plantlab/turntable-rig/pkg/config"
	"github.com/plantlab/turntable-rig/pkg/sequencer"
)

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
}

func procArgs() Args {
	args := Args{ConfigFile: "rig.yaml"}
	arg.MustParse(&args)
	return args
}

func main() {
	log.SetFlags(0)
	args := procArgs()

	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		log.Printf("Config %s not usable (%v); using defaults", args.ConfigFile, err)
		cfg = config.Default()
	}

	table := arduino.New(cfg.SerialPort, cfg.BaudRate)
	table.SettleDelay = cfg.SettleDelay()
	if err := table.Connect(); err != nil {
		log.Printf("Failed to connect to Arduino on %s: %v", cfg.SerialPort, err)
		log.Println("Serial commands will be disabled")
	} else {
		log.Printf("Arduino connected on %s", cfg.SerialPort)
	}
	defer table.Close()

	seq := sequencer.New(
		table,
		captureWorker("red", cfg.RedSerial, cfg),
		captureWorker("green", cfg.GreenSerial, cfg),
		cfg.RotateDuration(),
	)

	fmt.Println("Control has begun, awaiting further instruction:")
	showCommands()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("Enter command (or 'quit'):")
		if !scanner.Scan() {
			return
		}
		if quit := handle(scanner.Text(), seq, table, cfg); quit {
			return
		}
	}
}

func captureWorker(name, serial string, cfg *config.Config) *sequencer.CaptureWorker {
	return &sequencer.CaptureWorker{
		Name:     name,
		Binary:   cfg.CaptureBinary,
		Serial:   serial,
		Dir:      cfg.SaveDir,
		Filtered: cfg.SaveFiltered,
	}
}

// handle runs one command. No failure is fatal: the loop always comes back
// to the prompt.
func handle(line string, seq *sequencer.Sequencer, table *arduino.Channel, cfg *config.Config) (quit bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit":
		return true
	case "start":
		if err := seq.RunCycle(); err != nil {
			log.Printf("Capture cycle failed: %v", err)
			log.Println("Please run command again")
		}
	case "capture":
		if err := seq.CaptureStage(sequencer.Label0, sequencer.Label180); err != nil {
			log.Printf("Capture failed: %v", err)
		}
	case "capture red":
		if err := seq.CaptureRed(sequencer.Label180); err != nil {
			log.Printf("Red capture failed: %v", err)
		}
	case "capture green":
		if err := seq.CaptureGreen(sequencer.Label0); err != nil {
			log.Printf("Green capture failed: %v", err)
		}
	case "forward", "f":
		sendCommand(table, arduino.Forward)
	case "reverse", "r":
		sendCommand(table, arduino.Reverse)
	case "stop", "s":
		sendCommand(table, arduino.Stop)
	case "viewer_red":
		runViewer(cfg.ViewerBinary, cfg.RedSerial)
	case "viewer_green":
		runViewer(cfg.ViewerBinary, cfg.GreenSerial)
	case "commands":
		showCommands()
	default:
		fmt.Println("Invalid command, type 'commands' for help:")
	}
	return false
}

func sendCommand(table *arduino.Channel, cmd arduino.Command) {
	if err := table.Send(cmd); err != nil {
		log.Printf("Failed to send command to Arduino: %v", err)
	}
}

// runViewer blocks until the live feed window is closed.
func runViewer(binary, serial string) {
	log.Printf("Running camera live feed for %s...", serial)
	out, err := exec.Command(binary, "--serial", serial).CombinedOutput()
	if err != nil {
		log.Printf("Viewer failed: %v", err)
		if len(out) > 0 {
			log.Printf("Viewer output: %s", out)
		}
	}
}

func showCommands() {
	fmt.Println("Please use the following commands for further instructions:")
	fmt.Println("	1. start: run the full capture cycle")
	fmt.Println("	2. capture: capture from both cameras")
	fmt.Println("	3. capture red: capture from the red camera")
	fmt.Println("	4. capture green: capture from the green camera")
	fmt.Println("	5. forward or f: rotate the arm anti-clockwise")
	fmt.Println("	6. reverse or r: rotate the arm clockwise")
	fmt.Println("	7. stop or s: stop the arm rotation")
	fmt.Println("	8. viewer_red: open the red camera live feed")
	fmt.Println("	9. viewer_green: open the green camera live feed")
	fmt.Println("	10. quit: exit")
}
