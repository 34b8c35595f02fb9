package operand

import (
	"strconv"
	"strings"
)

// Parse parses the assembler text of an operand.
//
//	01, 01ll, pc, flhhh  register id followed by an optional sector path
//	m4@0x100             memory width 4 at address 0x100
func Parse(text string) (op Descriptor, err error) {
	defer func() {
		if err != nil {
			err = ErrParse{Text: text, Err: err}
		}
	}()

	if strings.ContainsRune(text, '@') {
		var width, address uint64
		width_text, address_text, _ := strings.Cut(text, "@")
		if !strings.HasPrefix(width_text, "m") {
			err = ErrSyntaxInvalid
			return
		}
		width, err = strconv.ParseUint(width_text[1:], 0, 8)
		if err != nil {
			err = ErrSyntaxInvalid
			return
		}
		address, err = strconv.ParseUint(address_text, 0, 32)
		if err != nil {
			err = ErrSyntaxInvalid
			return
		}
		mem := Memory{Width: int(width), Address: uint32(address)}
		_, err = mem.Size()
		if err != nil {
			return
		}
		op = mem
		return
	}

	if len(text) < 2 {
		err = ErrIdInvalid
		return
	}

	reg := Register{Id: text[:2], Sector: text[2:]}
	_, err = reg.Encode()
	if err != nil {
		return
	}

	op = reg

	return
}
