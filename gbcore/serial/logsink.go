package serial

import (
	"log/slog"

	"github.com/valerio/go-gbcore/gbcore/addr"
	"github.com/valerio/go-gbcore/gbcore/bit"
)

// LogSink implements a dummy serial device that consumes outgoing bytes as
// text. Test ROMs write a character to SB and then 0x81 to SC; the sink
// captures the byte, clears the start bit and requests the Serial interrupt.
// Handy for test roms that report results over the link port.
type LogSink struct {
	irqHandler func()
	sb, sc     byte
	logger     *slog.Logger

	// full transcript of everything sent, for test harnesses
	output []byte
	// line buffer for readable log output
	line []byte
}

// NewLogSink creates a new logging serial device.
// The passed function is called when a transfer is completed, should be wired
// to request the Serial interrupt.
func NewLogSink(irq func()) *LogSink {
	return &LogSink{
		irqHandler: irq,
		logger:     slog.Default(),
	}
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeTransfer()
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		return 0
	}
}

// Output returns everything the guest has sent so far.
func (s *LogSink) Output() string {
	return string(s.output)
}

func (s *LogSink) Reset() {
	s.sb = 0
	s.sc = 0
	s.output = s.output[:0]
	s.line = s.line[:0]
}

func (s *LogSink) maybeTransfer() {
	// a transfer starts when bit 7 (start) and bit 0 (clock source) of SC
	// are set; test ROMs write exactly 0x81.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	s.output = append(s.output, b)

	// buffer until newline for readable logs
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	// with no peer connected the received byte is 0xFF
	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
