// Receiver diagnostic counters.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package counters implements the cumulative receive counters used for
// RDM COMMS_STATUS reporting and general diagnostics. The counters are
// plain saturating uint16 values; reads must be consistent but need not
// be ordered with increments, so increments and reads both go through
// sync/atomic without a mutex.
package counters

import "sync/atomic"

// Counters tracks the five cumulative receive counters. The zero value
// is ready to use.
type Counters struct {
	dmxFrames          uint32
	rdmFrames          uint32
	rdmShortFrame      uint32
	rdmLengthMismatch  uint32
	rdmChecksumInvalid uint32
}

// saturatingAdd increments *addr by one, clamping at the 16-bit
// saturation ceiling rather than wrapping. The counter is stored in a
// uint32 word (atomic ops on uint16 are not available) but never
// allowed to exceed 0xFFFF.
func saturatingAdd(addr *uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if old >= 0xFFFF {
			return
		}
		if atomic.CompareAndSwapUint32(addr, old, old+1) {
			return
		}
	}
}

// IncDMXFrames records one received DMX frame.
func (c *Counters) IncDMXFrames() { saturatingAdd(&c.dmxFrames) }

// IncRDMFrames records one received, structurally valid RDM frame.
func (c *Counters) IncRDMFrames() { saturatingAdd(&c.rdmFrames) }

// IncRDMShortFrame records one received frame rejected as too short to
// contain a header (rdm.ResultShortFrame).
func (c *Counters) IncRDMShortFrame() { saturatingAdd(&c.rdmShortFrame) }

// IncRDMLengthMismatch records one received frame rejected for a
// declared-length/actual-length disagreement (rdm.ResultLengthMismatch).
func (c *Counters) IncRDMLengthMismatch() { saturatingAdd(&c.rdmLengthMismatch) }

// IncRDMChecksumInvalid records one received frame rejected for a
// checksum mismatch (rdm.ResultChecksumInvalid).
func (c *Counters) IncRDMChecksumInvalid() { saturatingAdd(&c.rdmChecksumInvalid) }

// Snapshot is a point-in-time copy of every counter, returned by
// value so callers (e.g. the COMMS_STATUS GET handler) can serialize it
// without racing further increments.
type Snapshot struct {
	DMXFrames          uint16
	RDMFrames          uint16
	RDMShortFrame      uint16
	RDMLengthMismatch  uint16
	RDMChecksumInvalid uint16
}

// Snapshot reads every counter.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		DMXFrames:          uint16(atomic.LoadUint32(&c.dmxFrames)),
		RDMFrames:          uint16(atomic.LoadUint32(&c.rdmFrames)),
		RDMShortFrame:      uint16(atomic.LoadUint32(&c.rdmShortFrame)),
		RDMLengthMismatch:  uint16(atomic.LoadUint32(&c.rdmLengthMismatch)),
		RDMChecksumInvalid: uint16(atomic.LoadUint32(&c.rdmChecksumInvalid)),
	}
}

// ResetCommsStatus clears the three RDM-error counters used by the
// COMMS_STATUS SET handler. The DMX and RDM frame totals are left
// untouched: E1.20 requires COMMS_STATUS to reset only the diagnostic
// error counters, not the cumulative traffic totals.
func (c *Counters) ResetCommsStatus() {
	atomic.StoreUint32(&c.rdmShortFrame, 0)
	atomic.StoreUint32(&c.rdmLengthMismatch, 0)
	atomic.StoreUint32(&c.rdmChecksumInvalid, 0)
}
