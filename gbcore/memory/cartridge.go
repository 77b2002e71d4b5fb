package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/valerio/go-gbcore/gbcore/bit"
)

const titleLength = 16

const (
	entryPointAddress      = 0x100
	logoAddress            = 0x104
	titleAddress           = 0x134
	newLicenseCodeAddress  = 0x144
	sgbFlagAddress         = 0x146
	cartridgeTypeAddress   = 0x147
	romSizeAddress         = 0x148
	ramSizeAddress         = 0x149
	destinationCodeAddress = 0x14A
	oldLicenseCodeAddress  = 0x14B
	versionNumberAddress   = 0x14C
	headerChecksumAddress  = 0x14D
	globalChecksumAddress  = 0x14E

	headerEnd = 0x14F
)

// Cartridge models a ROM-only cartridge: reads come straight from the ROM
// image, writes are no-ops. Mapper (MBC) behavior lives outside this core;
// the bus only sees an opaque byte-addressable module over 0x0000-0x7FFF
// and 0xA000-0xBFFF.
type Cartridge struct {
	data []byte

	title          string
	cartType       uint8
	romSize        uint8
	ramSize        uint8
	destination    uint8
	oldLicensee    uint8
	newLicensee    string
	sgbFlag        uint8
	version        uint8
	headerChecksum uint8
	globalChecksum uint16
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{data: make([]byte, 0x8000)}
}

// NewCartridgeWithData initializes a new Cartridge from a ROM image.
func NewCartridgeWithData(rom []byte) (*Cartridge, error) {
	if len(rom) < headerEnd+1 {
		return nil, errors.New("ROM too small to contain a header")
	}

	cart := &Cartridge{
		data:           make([]byte, len(rom)),
		title:          cleanTitle(rom[titleAddress : titleAddress+titleLength]),
		cartType:       rom[cartridgeTypeAddress],
		romSize:        rom[romSizeAddress],
		ramSize:        rom[ramSizeAddress],
		destination:    rom[destinationCodeAddress],
		oldLicensee:    rom[oldLicenseCodeAddress],
		newLicensee:    string(rom[newLicenseCodeAddress : newLicenseCodeAddress+2]),
		sgbFlag:        rom[sgbFlagAddress],
		version:        rom[versionNumberAddress],
		headerChecksum: rom[headerChecksumAddress],
		globalChecksum: bit.Combine(rom[globalChecksumAddress], rom[globalChecksumAddress+1]),
	}
	copy(cart.data, rom)

	return cart, nil
}

// Read returns the ROM byte at the given bus address. Addresses past the end
// of the image (e.g. external RAM reads on a 32 KiB cart) read as 0xFF.
func (c *Cartridge) Read(address uint16) uint8 {
	if int(address) >= len(c.data) {
		return 0xFF
	}
	return c.data[address]
}

// Write is a no-op on a ROM-only cartridge.
func (c *Cartridge) Write(address uint16, value uint8) {}

// Title returns the cleaned-up game title from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// ChecksumValid recomputes the header checksum over 0x134-0x14C and compares
// it against the stored byte at 0x14D.
func (c *Cartridge) ChecksumValid() bool {
	var x uint8
	for i := titleAddress; i <= versionNumberAddress; i++ {
		x = x - c.data[i] - 1
	}
	return x == c.headerChecksum
}

// HeaderString renders the parsed header fields for logs and the CLI.
func (c *Cartridge) HeaderString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:           %s\n", c.title)
	fmt.Fprintf(&b, "Type:            0x%02X (%s)\n", c.cartType, cartTypeString(c.cartType))
	fmt.Fprintf(&b, "ROM size:        %d KiB\n", 32<<c.romSize)
	fmt.Fprintf(&b, "RAM size code:   0x%02X\n", c.ramSize)
	fmt.Fprintf(&b, "Destination:     0x%02X\n", c.destination)
	fmt.Fprintf(&b, "Licensee:        0x%02X (new: %q)\n", c.oldLicensee, c.newLicensee)
	fmt.Fprintf(&b, "Version:         %d\n", c.version)
	fmt.Fprintf(&b, "Header checksum: 0x%02X (valid: %v)\n", c.headerChecksum, c.ChecksumValid())
	fmt.Fprintf(&b, "Global checksum: 0x%04X\n", c.globalChecksum)
	return b.String()
}

func cartTypeString(code uint8) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1"
	case 0x05, 0x06:
		return "MBC2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return "other/unknown"
	}
}

// cleanTitle processes a raw ROM title: null bytes become spaces,
// non-printable characters are replaced, and the result is trimmed.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))

	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	return strings.TrimSpace(string(runes))
}
