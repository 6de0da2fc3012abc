//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"device/rp"

	"extmod/core"
)

// dmaChannelHW is one DMA channel. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	_           [12]volatile.Register32 // aliases
}

var dmaChannels = (*[12]dmaChannelHW)(unsafe.Pointer(rp.DMA))

// Static channel assignment
const (
	timerDMAChannel = iota
	uartDMAChannel
)

const (
	_DREQ_PIO0_TX0 = 0x0
	_DREQ_UART1_TX = 0x16
)

type dmaTxSize uint32

const (
	dmaTxSize8 dmaTxSize = iota
	dmaTxSize16
	dmaTxSize32
)

// maxSlotWords bounds the translated timer stream. A 26 byte frame at
// twelve runs per byte fits.
const maxSlotWords = 192

// dmaStream implements core.DMAChannel on one RP2040 channel paced by a
// peripheral DREQ. Timer streams are translated into state machine words
// first; byte streams go out as they are.
type dmaStream struct {
	hw      *dmaChannelHW
	channel uint8
	dreq    uint32
	dst     *uint32
	timer   *pioPulseTimer // set for the timer stream

	words     [maxSlotWords]uint32
	truncated uint32
}

func newDMAStream(channel uint8, dreq uint32, dst *uint32) *dmaStream {
	return &dmaStream{
		hw:      &dmaChannels[channel],
		channel: channel,
		dreq:    dreq,
		dst:     dst,
	}
}

func (ch *dmaStream) mask() uint32 {
	return 1 << ch.channel
}

// Enabled reports the busy bit, which drops when the count reaches zero
func (ch *dmaStream) Enabled() bool {
	return ch.hw.CTRL_TRIG.Get()&rp.DMA_CH0_CTRL_TRIG_BUSY != 0
}

// Disable aborts the transfer sequence and waits for the FIFOs to flush
func (ch *dmaStream) Disable() {
	ch.hw.CTRL_TRIG.ClearBits(rp.DMA_CH0_CTRL_TRIG_EN)
	rp.DMA.CHAN_ABORT.Set(ch.mask())
	for rp.DMA.CHAN_ABORT.Get()&ch.mask() != 0 {
	}
}

func (ch *dmaStream) Load(t core.DMATransfer) {
	var src unsafe.Pointer
	var n int
	size := dmaTxSize8
	switch t.Target {
	case core.DMAToTimerReload:
		n = ch.translate(t.Words)
		if n > 0 {
			src = unsafe.Pointer(&ch.words[0])
		}
		size = dmaTxSize32
	case core.DMAToUARTData:
		n = len(t.Bytes)
		if n > 0 {
			src = unsafe.Pointer(&t.Bytes[0])
		}
	}
	if n == 0 {
		ch.hw.TRANS_COUNT.Set(0)
		return
	}
	ch.hw.READ_ADDR.Set(uint32(uintptr(src)))
	ch.hw.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(ch.dst))))
	ch.hw.TRANS_COUNT.Set(uint32(n))

	ctrl := uint32(ch.channel)<<rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos |
		ch.dreq<<rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos |
		uint32(size)<<rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Pos |
		rp.DMA_CH0_CTRL_TRIG_INCR_READ
	// EN stays clear until Enable
	ch.hw.CTRL_TRIG.Set(ctrl)
}

// translate converts the module element stream into state machine slot
// words according to the current timer mode
func (ch *dmaStream) translate(elems []uint16) int {
	t := ch.timer
	n := 0
	switch t.mode {
	case core.OutputToggle:
		for i := 0; i < len(elems) && n < maxSlotWords; i += 2 {
			var idle uint16
			if i+1 < len(elems) {
				idle = elems[i+1]
			}
			ch.words[n] = toggleWord(elems[i], idle, i+2 >= len(elems))
			n++
		}
	default:
		for i, w := range elems {
			if n == maxSlotWords {
				break
			}
			ch.words[n] = t.pwmWord(w, i == len(elems)-1)
			n++
		}
	}
	if n == maxSlotWords {
		ch.truncated++
	}
	return n
}

func (ch *dmaStream) Enable(completeInterrupt bool) {
	if completeInterrupt {
		rp.DMA.INTE0.SetBits(ch.mask())
	} else {
		rp.DMA.INTE0.ClearBits(ch.mask())
	}
	if ch.hw.TRANS_COUNT.Get() == 0 {
		return
	}
	ch.hw.CTRL_TRIG.SetBits(rp.DMA_CH0_CTRL_TRIG_EN)
}

func (ch *dmaStream) TransferComplete() bool {
	return rp.DMA.INTR.Get()&ch.mask() != 0
}

func (ch *dmaStream) ClearTransferComplete() {
	rp.DMA.INTR.Set(ch.mask())
}
