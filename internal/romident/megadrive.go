package romident

import (
	"bytes"
	"strings"
)

const (
	mdHeaderLen = 96
	smdHeader   = 0x200
	smdBlock    = 0x4000
)

var mdMagic = [][]byte{
	[]byte("SEGA MEGA DRIVE "),
	[]byte("SEGA GENESIS    "),
}

// isSMD reports whether rom is a Super Magic Drive interleaved dump.
func isSMD(rom []byte) bool {
	return len(rom) >= 10 && rom[1] == 0x03 && rom[8] == 0xAA && rom[9] == 0xBB
}

// deinterleave rebuilds the header of the first SMD block. A block stores
// the odd bytes in its first half and the even bytes in its second.
func deinterleave(rom []byte) []byte {
	if len(rom) < smdHeader+smdBlock {
		return nil
	}
	block := rom[smdHeader : smdHeader+smdBlock]
	odd, even := block[0x80:], block[smdBlock/2+0x80:]
	hdr := make([]byte, mdHeaderLen)
	for i := 0; i < mdHeaderLen/2; i++ {
		hdr[2*i] = even[i]
		hdr[2*i+1] = odd[i]
	}
	return hdr
}

func identifyMegaDrive(rom []byte) (Result, bool) {
	var hdr []byte
	switch {
	case isSMD(rom):
		hdr = deinterleave(rom)
	case len(rom) >= 0x100+mdHeaderLen:
		hdr = rom[0x100 : 0x100+mdHeaderLen]
	}
	if hdr == nil {
		return Result{}, false
	}
	magic := hdr[0:16]
	if !bytes.Equal(magic, mdMagic[0]) && !bytes.Equal(magic, mdMagic[1]) {
		return Result{}, false
	}
	return Result{
		System: MegaDrive,
		Title:  trimTitle(hdr[32:64]),
		Detail: strings.TrimSpace(string(hdr[16:32])),
	}, true
}
