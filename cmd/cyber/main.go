/*
 * CyberCore - Main process
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/cyber-core/command/reader"
	config "github.com/rcornwell/cyber-core/config/configparser"
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/devices/disk"
	"github.com/rcornwell/cyber-core/emu/devices/interlock"
	"github.com/rcornwell/cyber-core/emu/devices/printer"
	devreader "github.com/rcornwell/cyber-core/emu/devices/reader"
	"github.com/rcornwell/cyber-core/emu/devices/rtc"
	"github.com/rcornwell/cyber-core/emu/devices/tape"
	"github.com/rcornwell/cyber-core/emu/machine"
	"github.com/rcornwell/cyber-core/emu/timer"
	logger "github.com/rcornwell/cyber-core/util/logger"
)

// tickPeriod is how often the Ticker asks the machine to step one
// cycle; spec.md leaves real-time fidelity out of scope, so this is a
// driver rate chosen to keep an attached console responsive rather
// than a clock calibrated against real Cyber hardware.
const tickPeriod = 100 * time.Microsecond

func main() {
	optConfig := getopt.StringLong("config", 'c', "cyber.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optConsole := getopt.BoolLong("console", 0, "Attach an interactive operator console on stdin/stdout")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var out *os.File = os.Stdout
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log file:", err)
			os.Exit(1)
		}
		out = f
	}
	debugOn := false
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	log := slog.New(logger.NewHandler(out, &slog.HandlerOptions{Level: programLevel}, &debugOn))
	slog.SetDefault(log)

	log.Info("cyber-core starting", "config", *optConfig)

	cfg, err := config.LoadConfigFile(*optConfig)
	if err != nil {
		log.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	m, err := machine.New(machine.Config{
		Model:        cfg.Model.Name,
		CMWords:      cfg.Model.CMWords,
		EMWords:      cfg.Model.EMWords,
		PPCount:      cfg.Model.PPCount,
		ChannelCount: cfg.Model.ChannelCount,
	})
	if err != nil {
		log.Error("configuring machine", "error", err)
		os.Exit(1)
	}

	for _, da := range cfg.Devices {
		if err := attachDevice(m, da); err != nil {
			log.Error("attaching device", "channel", da.Channel, "kind", da.Kind, "error", err)
			os.Exit(1)
		}
	}

	clock := timer.New(tickPeriod)
	defer clock.Shutdown()
	clock.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *optConsole {
		go reader.ConsoleReader(m)
	}

	log.Info("cyber-core running")
loop:
	for {
		select {
		case <-clock.Ticks():
			m.Tick()
		case <-sigChan:
			log.Info("shutdown signal received")
			break loop
		}
	}

	clock.Stop()
	log.Info("cyber-core stopped", "cycles", m.Cycles)
}

// attachDevice builds the one representative peripheral named by da.Kind
// and attaches it to the channel da.Channel names, per spec.md's channel
// configuration table (disk/tape/printer/reader/rtc/interlock are the
// device kinds this tree models; anything else is a configuration error
// rather than a silently ignored line).
func attachDevice(m *machine.Machine, da config.DeviceAttach) error {
	ch := m.Channel(device.ChannelID(da.Channel - 1))
	if ch == nil {
		return fmt.Errorf("channel %d out of range", da.Channel)
	}
	equipment := optionUint(da.Options, "equipment", 0)

	switch da.Kind {
	case "disk":
		geom := disk.Geometry{
			Cylinders: optionInt(da.Options, "cylinders", 1),
			Tracks:    optionInt(da.Options, "tracks", 1),
			Sectors:   optionInt(da.Options, "sectors", 1),
		}
		d, err := disk.New(m.Sched, device.ChannelID(da.Channel-1), equipment, geom, m.EM, da.Options["file"])
		if err != nil {
			return err
		}
		ch.Attach(d)
	case "tape":
		t := tape.New(m.Sched, device.ChannelID(da.Channel-1), equipment)
		if path := da.Options["file"]; path != "" {
			if err := t.Context().Attach(path); err != nil {
				return err
			}
		}
		ch.Attach(t)
	case "printer":
		sink, err := textSink(da.Options["file"])
		if err != nil {
			return err
		}
		ch.Attach(printer.New(device.ChannelID(da.Channel-1), equipment, sink))
	case "reader":
		src, err := newCardFile(da.Options["file"])
		if err != nil {
			return err
		}
		ch.Attach(devreader.New(device.ChannelID(da.Channel-1), equipment, src))
	case "rtc":
		clock := rtc.FixedRate(float64(tickPeriod.Nanoseconds()))
		ch.Attach(rtc.New(m.Sched, clock, device.ChannelID(da.Channel-1), equipment))
	case "interlock":
		ch.Attach(interlock.New(device.ChannelID(da.Channel-1), equipment))
	default:
		return fmt.Errorf("unknown device kind %q", da.Kind)
	}
	return nil
}

func textSink(path string) (*os.File, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func optionInt(opts map[string]string, key string, fallback int) int {
	v, ok := opts[key]
	if !ok {
		return fallback
	}
	n := fallback
	fmt.Sscanf(v, "%d", &n)
	return n
}

func optionUint(opts map[string]string, key string, fallback uint) uint {
	v, ok := opts[key]
	if !ok {
		return fallback
	}
	n := fallback
	fmt.Sscanf(v, "%d", &n)
	return n
}
