// This file is part of Framegate.
//
// Framegate is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Framegate is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Framegate.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/framegate/framegate/control"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/launcher"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/logger"
	"github.com/framegate/framegate/modalflag"
	"github.com/framegate/framegate/performance"
	"github.com/framegate/framegate/prefs"
	"github.com/framegate/framegate/statsview"
	"github.com/framegate/framegate/version"
)

func main() {
	// #ctrlc handler. the control session leaves the terminal in cbreak
	// mode while running so an interrupt must not skip the restore
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		fmt.Println("\r")
		os.Exit(10)
	}()

	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "CONTROL", "PERFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)

	case "CONTROL":
		err = controlSession(md)

	case "PERFORMANCE":
		err = perform(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// run launches a gated program and attaches a control session to it.
func run(md *modalflag.Modes) error {
	md.NewMode()

	socket := md.AddString("socket", "", "path to bind the link socket at")
	progOut := md.AddString("progout", "", "file to write the gated program's output to")
	log := md.AddBool("log", false, "echo debugging log to stderr")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr, true)
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("no gated program specified")
	}

	prf, err := prefs.Load()
	if err != nil {
		return err
	}
	if *socket != "" {
		prf.SocketPath = *socket
	}

	lnc, err := launcher.Launch(md.GetArg(0), md.RemainingArgs()[1:], prf.SocketPath)
	if err != nil {
		return err
	}
	defer lnc.Kill()

	// drain the program's terminal output so it cannot stall on a full
	// pty buffer
	out := io.Discard
	if *progOut != "" {
		f, err := os.Create(*progOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	go func() {
		_, _ = io.Copy(out, lnc.Output())
	}()

	return session(prf)
}

// controlSession attaches to a gated program that is already running.
func controlSession(md *modalflag.Modes) error {
	md.NewMode()

	socket := md.AddString("socket", link.DefaultSocketPath, "path of the link socket to connect to")
	log := md.AddBool("log", false, "echo debugging log to stderr")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr, true)
	}

	prf, err := prefs.Load()
	if err != nil {
		return err
	}
	prf.SocketPath = *socket

	return session(prf)
}

// session connects the link client and runs the interactive controller.
func session(prf *prefs.Preferences) error {
	fmt.Println("Connecting to framegate...")

	client, err := link.Connect(prf.SocketPath, 5*time.Second)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("Connected.")

	src, err := input.NewSDLCapture(prf.Hotkeys)
	if err != nil {
		return err
	}

	ses, err := control.NewSession(client, src, prf)
	if err != nil {
		src.Destroy()
		return err
	}

	return ses.Run()
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "none", "run through profiler: cpu, mem, all, none")
	duration := md.AddString("duration", "5s", "run duration")
	threads := md.AddInt("threads", 4, "number of synthetic gated threads")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run statistics server (%s)", statsview.Address))
	log := md.AddBool("log", false, "echo debugging log to stderr")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr, true)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	prof, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	return performance.Check(os.Stdout, prof, *duration, *threads)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Println(version.ApplicationName, ver)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
