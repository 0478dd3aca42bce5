/*
 * CyberCore - Device port contract
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
 * RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

// Package device defines the capability set a peripheral exposes to a
// channel: the Declined/Accepted/Processed function-code protocol every
// device implements, and the optional PCIDevice extension for devices
// (RTC, interlock) that move data by direct in/out pulses rather than a
// function-code-driven transfer.
package device

import "github.com/rcornwell/cyber-core/emu/word"

// Func is the three-way reply a device gives to a channel function code.
type Func int

const (
	// Declined means this device does not recognize the code; the
	// channel fabric offers it to the next device in the list.
	Declined Func = iota
	// Accepted means I/O will follow; the fabric records this device as
	// the channel's selected ioDevice.
	Accepted
	// Processed means the code executed immediately (rewind, reset,
	// clear); no further I/O is expected.
	Processed
)

func (f Func) String() string {
	switch f {
	case Declined:
		return "Declined"
	case Accepted:
		return "Accepted"
	case Processed:
		return "Processed"
	default:
		return "Func(?)"
	}
}

// ChannelID identifies a channel slot by index. Devices hold a ChannelID,
// never a pointer to a Channel, so the channel/device relationship has no
// cyclic owning references.
type ChannelID int

// DeviceID identifies a device slot within a channel's device list.
type DeviceID int

// NoChannel is the zero-value sentinel for "not attached to a channel".
const NoChannel ChannelID = -1

// NoDevice is the sentinel for "no unit selected".
const NoDevice DeviceID = -1

// Device is the capability set every channel-attached peripheral supplies.
type Device interface {
	// Func offers a 12-bit function code to the device. The fabric calls
	// this in device-list order until one reply is not Declined.
	Func(code word.PpWord) Func

	// Activate is called when the channel transitions to active with
	// this device selected as ioDevice.
	Activate()

	// Disconnect is called when the channel disconnects while this
	// device is selected.
	Disconnect()

	// IO is the per-tick pulse that moves one 12-bit word between the
	// channel's data latch and the device, or advances the device's
	// internal transfer state. The device is responsible for setting
	// the channel's active/full flags as its transfer progresses.
	IO()

	// Equipment returns the device's configured equipment number, used
	// for status/identification display and config lookups.
	Equipment() uint
}

// PCIDevice is the extension to Device for peripheral-communication-
// interface style devices (the RTC and interlock channels) that exchange
// data by direct pulses rather than the function/io protocol's transfer
// loop.
type PCIDevice interface {
	Device

	// In returns the next word the device is presenting.
	In() word.PpWord
	// Out accepts a word written by the channel.
	Out(data word.PpWord)
	// Full reports whether the device currently holds unread data.
	Full() bool
	// Empty reports whether the device is ready to accept new data.
	Empty() bool
	// Flags returns the device's raw status word, used by the channel
	// to refresh its active/full state for PCI devices.
	Flags() uint16
}
