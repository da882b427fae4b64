package machine

import (
	"bytes"
	"testing"
)

func TestLoadProgramFailsSoftlyOnOverflow(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	err := mem.LoadProgram(make([]byte, 10), 0xFFFD)
	assert(t, err != nil, "expected overflow error")
	assert(t, mem.Read(0xFFFD) == 0, "expected no bytes written on overflow")
}

func TestConsoleOutEmitsByteAndReadsZero(t *testing.T) {
	var buf bytes.Buffer
	mem := NewAddressSpace(&buf)
	mem.Write(AddrConsoleOut, 0x41)
	assert(t, buf.String() == "A", "expected host to observe 'A', got %q", buf.String())
	assert(t, mem.Read(AddrConsoleOut) == 0, "expected CONSOLE_OUT to read back 0")
}

func TestConsoleInAlwaysReadsZero(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	mem.Write(AddrConsoleIn, 0x7F)
	assert(t, mem.Read(AddrConsoleIn) == 0, "expected CONSOLE_IN writes to have no effect")
}

func TestTimerCountsDownAndMirrorsValue(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	mem.Write(AddrTimerCtrl, 3)
	assert(t, mem.Read(AddrTimerValue) == 3, "expected TIMER_VALUE to start at the written count")

	mem.UpdateTimer()
	assert(t, mem.Read(AddrTimerValue) == 2, "expected TIMER_VALUE to tick down")

	mem.UpdateTimer()
	mem.UpdateTimer()
	assert(t, mem.Read(AddrTimerValue) == 0, "expected TIMER_VALUE to stop at 0")

	mem.UpdateTimer()
	assert(t, mem.Read(AddrTimerValue) == 0, "expected TIMER_VALUE to stay at 0 once stopped")
}

func TestTimerValueWriteHasNoEffect(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	mem.Write(AddrTimerCtrl, 5)
	mem.Write(AddrTimerValue, 99)
	assert(t, mem.Read(AddrTimerValue) == 5, "expected TIMER_VALUE writes to be ignored")
}

func TestOrdinaryRAMReadWrite(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	mem.Write(0x1000, 0xAB)
	assert(t, mem.Read(0x1000) == 0xAB, "expected RAM round trip")
}

func TestResetClearsRAMAndMMIO(t *testing.T) {
	mem := NewAddressSpace(&bytes.Buffer{})
	mem.Write(0x1000, 0xAB)
	mem.Write(AddrTimerCtrl, 9)
	mem.Reset()
	assert(t, mem.Read(0x1000) == 0, "expected RAM cleared on reset")
	assert(t, mem.Read(AddrTimerValue) == 0, "expected timer cleared on reset")
}
