// printout-inspect is the primary CLI: it attaches to the printer's serial
// link, reconstructs printouts, and optionally drives live interaction or
// clipboard export.
//
// Flag parsing and usage message follow cmd/ie32to64/main.go; signal-driven
// shutdown follows main.go's backend-selection idiom.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	printmech "github.com/sullyy9/martel-print-mech-analyser-software"
)

func main() {
	portName := flag.String("port", "", "serial device to open (e.g. /dev/ttyUSB0)")
	outPath := flag.String("out", "", "write the final printout as a PNG to this path")
	live := flag.Bool("live", false, "enable interactive raw-terminal control")
	toClipboard := flag.Bool("clipboard", false, "copy the descriptor's recognised text to the clipboard on exit")
	pollInterval := flag.Duration("poll", 200*time.Millisecond, "interval between PrintoutTake polls")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: printout-inspect -port <device> [options]\n\nCaptures burn activity from a receipt printhead over a serial link and\nreconstructs both a bitmap and a recognised-text descriptor.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  printout-inspect -port /dev/ttyUSB0 -out printout.png\n")
		fmt.Fprintf(os.Stderr, "  printout-inspect -port /dev/ttyUSB0 -live -clipboard\n")
	}
	flag.Parse()

	if *portName == "" {
		flag.Usage()
		os.Exit(1)
	}

	port, err := printmech.OpenSerialPort(*portName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening %s: %v\n", *portName, err)
		os.Exit(1)
	}

	server := printmech.NewServer(port)

	var control *printmech.TerminalControl
	if *live {
		control = printmech.NewTerminalControl(server)
		control.Start()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var descriptor *printmech.PrintoutDescriptor
	fonts, err := defaultFonts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading fonts: %v\n", err)
		os.Exit(1)
	}

	ticker := time.NewTicker(*pollInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-sig:
			break loop
		case <-ticker.C:
			server.PrintoutTake()
			resp := <-server.Responses()
			if !resp.Ok {
				continue
			}
			if descriptor == nil {
				descriptor = printmech.NewPrintoutDescriptor(resp.Printout, fonts)
			} else {
				descriptor.Extend(resp.Printout)
			}
		}
	}

	if control != nil {
		control.Stop()
	}
	server.Exit()
	server.Wait()

	if descriptor == nil {
		fmt.Fprintln(os.Stderr, "printout-inspect: no printout captured")
		return
	}

	if *outPath != "" {
		if err := descriptor.Printout.Save(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: saving %s: %v\n", *outPath, err)
			os.Exit(1)
		}
	}

	if *toClipboard {
		if err := printmech.CopyDescriptorText(descriptor); err != nil {
			fmt.Fprintf(os.Stderr, "error: copying to clipboard: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Print(descriptor.Text())
}

func defaultFonts() ([]*printmech.Font, error) {
	regular, err := printmech.DefaultFont()
	if err != nil {
		return nil, err
	}
	bold, err := regular.IntoBold()
	if err != nil {
		return nil, err
	}
	return []*printmech.Font{regular, bold}, nil
}
