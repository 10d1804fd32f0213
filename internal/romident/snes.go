package romident

import (
	"encoding/binary"
	"fmt"
)

const snesHeaderLen = 32

// Internal header locations for LoROM, HiROM and ExHiROM, each with and
// without a 512 byte copier header in front.
var snesOffsets = [...]int{
	0x7FC0, 0xFFC0, 0x101C0,
	0x200 + 0x7FC0, 0x200 + 0xFFC0, 0x200 + 0x101C0,
}

func identifySNES(rom []byte) (Result, bool) {
	for _, off := range snesOffsets {
		if off+snesHeaderLen > len(rom) {
			continue
		}
		h := rom[off : off+snesHeaderLen]
		title := h[0:21]
		if !visibleASCII(title) {
			continue
		}
		// ROM size code 0x09 is 4 Mbit, 0x0D is 64 Mbit.
		if size := h[23]; size < 0x09 || size > 0x0D {
			continue
		}
		complement := binary.LittleEndian.Uint16(h[28:30])
		sum := binary.LittleEndian.Uint16(h[30:32])
		return Result{
			System:   SNES,
			Title:    trimTitle(title),
			Checksum: uint32(sum),
			Verified: sum^complement == 0xFFFF,
			Detail:   fmt.Sprintf("%s, %d KiB", snesMapping(h[21]), 1<<h[23]),
		}, true
	}
	return Result{}, false
}

func snesMapping(mode byte) string {
	switch mode & 0x0F {
	case 0x00:
		return "LoROM"
	case 0x01:
		return "HiROM"
	case 0x05:
		return "ExHiROM"
	}
	return "unknown mapping"
}
