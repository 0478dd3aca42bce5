/*
 * CyberCore - Channel fabric
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

// Package channel implements the PP-driven 12-bit latch channel: an array
// of small state machines, each dispatching function codes to an attached
// device list and pulsing one word per tick between its data latch and
// whichever device accepted the function code.
package channel

import "github.com/rcornwell/cyber-core/emu/device"

// Channel is one channel's observable state plus its attached device list.
// A Machine owns an array of Channel values; devices reference their
// channel by device.ChannelID, never by pointer, so there are no owning
// cycles between the two packages.
type Channel struct {
	Data            uint16 // 12-bit data latch
	Active          bool
	Full            bool
	DiscAfterInput  bool // defer deactivation until one more read drains the latch
	Flag            bool
	DelayDisconnect int // ticks remaining before an active channel auto-disconnects
	DelayStatus     int // ticks remaining before a status word is considered stable

	devices []device.Device
	ioIndex int // index into devices of the selected ioDevice, -1 if none
}

// New returns an empty, inactive channel.
func New() *Channel {
	return &Channel{ioIndex: -1}
}

// Attach adds a device to the channel's device list. Function codes are
// offered to devices in attach order.
func (c *Channel) Attach(d device.Device) device.DeviceID {
	c.devices = append(c.devices, d)
	return device.DeviceID(len(c.devices) - 1)
}

// Devices returns the channel's attached device list, for config/debug
// inspection.
func (c *Channel) Devices() []device.Device {
	return c.devices
}

// IODevice returns the currently selected device and whether one is
// selected.
func (c *Channel) IODevice() (device.Device, bool) {
	if c.ioIndex < 0 || c.ioIndex >= len(c.devices) {
		return nil, false
	}
	return c.devices[c.ioIndex], true
}

func (c *Channel) pciDevice() (device.PCIDevice, bool) {
	d, ok := c.IODevice()
	if !ok {
		return nil, false
	}
	pd, ok := d.(device.PCIDevice)
	return pd, ok
}

// Function walks the device list offering code to each device in turn
// until one replies other than Declined. Accepted records that device as
// ioDevice; Processed clears ioDevice (the code was handled with no
// follow-up I/O). If every device declines, the channel is left active
// and full with no device selected, modeling a hung channel.
func (c *Channel) Function(code uint16) device.Func {
	for i, d := range c.devices {
		switch reply := d.Func(code); reply {
		case device.Accepted:
			c.ioIndex = i
			return reply
		case device.Processed:
			c.ioIndex = -1
			return reply
		}
	}
	c.Active = true
	c.Full = true
	c.ioIndex = -1
	return device.Declined
}

// Activate sets the channel active and, if a device is selected, invokes
// its Activate callback.
func (c *Channel) Activate() {
	c.Active = true
	if d, ok := c.IODevice(); ok {
		d.Activate()
	}
}

// Disconnect clears active. If a device is selected, its Disconnect
// callback runs; otherwise the full flag is simply cleared.
func (c *Channel) Disconnect() {
	c.Active = false
	if d, ok := c.IODevice(); ok {
		d.Disconnect()
		return
	}
	c.Full = false
}

// IO delivers the per-tick data pulse to the selected device. The RTC
// hardwire is always treated as active regardless of the Active flag.
func (c *Channel) IO(alwaysActive bool) {
	if !c.Active && !alwaysActive {
		return
	}
	if d, ok := c.IODevice(); ok {
		d.IO()
	}
}

// In moves one word from a PCI device into the channel latch.
func (c *Channel) In() uint16 {
	if pd, ok := c.pciDevice(); ok {
		c.Data = uint16(pd.In())
	}
	return c.Data
}

// Out moves one word from the channel latch to a PCI device.
func (c *Channel) Out(data uint16) {
	c.Data = data
	if pd, ok := c.pciDevice(); ok {
		pd.Out(data)
	}
}

// SetFull asserts or clears the full flag and calls the PCI device's
// Full()/Empty() callback to match, per spec.md §4.3.
func (c *Channel) SetFull(full bool) {
	c.Full = full
	if pd, ok := c.pciDevice(); ok {
		if full {
			pd.Full()
		} else {
			pd.Empty()
		}
	}
}

// SetEmpty is the inverse convenience of SetFull(false), kept distinct to
// mirror the two named operations of the hardware's protocol.
func (c *Channel) SetEmpty() {
	c.SetFull(false)
}

// CheckIfActive refreshes Active from a PCI device's Flags() word.
func (c *Channel) CheckIfActive(activeBit uint16) {
	if pd, ok := c.pciDevice(); ok {
		c.Active = pd.Flags()&activeBit != 0
	}
}

// CheckIfFull refreshes Full from a PCI device's Flags() word.
func (c *Channel) CheckIfFull(fullBit uint16) {
	if pd, ok := c.pciDevice(); ok {
		c.Full = pd.Flags()&fullBit != 0
	}
}

// Step advances the channel's delayed-disconnect and delayed-status
// countdowns by one tick. Called once per emulator tick for every channel.
func (c *Channel) Step() {
	if c.DelayDisconnect > 0 {
		c.DelayDisconnect--
		if c.DelayDisconnect == 0 {
			c.Active = false
			c.DiscAfterInput = false
		}
	}
	if c.DelayStatus > 0 {
		c.DelayStatus--
	}
}
