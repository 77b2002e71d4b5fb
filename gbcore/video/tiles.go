package video

const (
	// TilePatternCount is the number of tiles stored in the tile data area.
	TilePatternCount = 384
	// TilesPerRow is the width of the debug texture in tiles.
	TilesPerRow = 16
	// TileRows is the height of the debug texture in tiles.
	TileRows = 24

	// DebugTilesWidth is the pixel width of the decoded tile texture.
	DebugTilesWidth = TilesPerRow * 8
	// DebugTilesHeight is the pixel height of the decoded tile texture.
	DebugTilesHeight = TileRows * 8
)

// TileDecoder keeps an RGBA rendering of the whole tile data area
// (0x8000-0x97FF) up to date. Each VRAM write re-decodes the eight pixels of
// the affected tile row, so the texture is always current without a full
// re-scan. Colors use the fixed grayscale shades; palettes do not apply to
// the debug view.
type TileDecoder struct {
	// Pixels is a 128x192 RGBA image, 4 bytes per pixel.
	pixels [DebugTilesWidth * DebugTilesHeight * 4]uint8
}

func NewTileDecoder() *TileDecoder {
	return &TileDecoder{}
}

// Pixels returns the backing RGBA image.
func (t *TileDecoder) Pixels() []uint8 {
	return t.pixels[:]
}

// Update re-decodes the tile row containing the given VRAM offset. Offsets
// past the tile data area (the tile maps) are ignored.
func (t *TileDecoder) Update(vram []uint8, offset uint16) {
	if offset >= TilePatternCount*16 {
		return
	}

	// each tile is 16 bytes, two bytes per row of eight pixels; the first
	// byte of the pair carries the high bit of each pixel
	row := offset &^ 1
	hi := vram[row]
	lo := vram[row+1]

	tileIndex := int(offset) >> 4
	tileX := tileIndex % TilesPerRow
	tileY := tileIndex / TilesPerRow
	line := int(offset&0xF) >> 1

	y := tileY*8 + line
	for px := 0; px < 8; px++ {
		colorIndex := ((hi>>(7-px))&1)<<1 | (lo>>(7-px))&1
		color := uint32(shades[colorIndex])

		base := (y*DebugTilesWidth + tileX*8 + px) * 4
		t.pixels[base] = uint8(color >> 24)
		t.pixels[base+1] = uint8(color >> 16)
		t.pixels[base+2] = uint8(color >> 8)
		t.pixels[base+3] = uint8(color)
	}
}

// DebugTiles returns the decoder holding the live tile texture.
func (p *PPU) DebugTiles() *TileDecoder {
	return p.debugTiles
}
