package main

import "bytes"

// WipeRichHeader zeroes the undocumented Microsoft Rich header: the
// XOR-masked "DanS".."Rich" block between the DOS stub and the NT header
// that encodes exact compiler/linker build numbers. Runs independently of
// the stub wipe; no step may assume an earlier one succeeded.
type WipeRichHeader struct{}

func (WipeRichHeader) Name() string { return "rich-header" }

var (
	richMagic = []byte{'R', 'i', 'c', 'h'}
	dansMagic = []byte{'D', 'a', 'n', 'S'}
)

func (WipeRichHeader) Apply(mc *MutationContext) error {
	img := mc.Img
	lo := 0x40
	hi := mc.Layout.NTHeaderOffset
	if hi > img.Len() {
		hi = img.Len()
	}
	if hi-lo < 16 {
		return nil
	}

	buf := img.Bytes()
	richAt := -1
	for at := lo; at+8 <= hi; at += 4 {
		if bytes.Equal(buf[at:at+4], richMagic) {
			richAt = at
			break
		}
	}
	if richAt < 0 {
		return nil // absent is the common case
	}

	// The whole block is XORed with the key stored right after "Rich",
	// so "DanS" only appears once unmasked. Walk back to find it.
	key := buf[richAt+4 : richAt+8]
	for at := richAt - 4; at >= lo; at -= 4 {
		masked := [4]byte{buf[at] ^ key[0], buf[at+1] ^ key[1], buf[at+2] ^ key[2], buf[at+3] ^ key[3]}
		if bytes.Equal(masked[:], dansMagic) {
			if err := img.Zero(at, richAt+8-at); err != nil {
				return moduleFailf("rich-header", "rich block range invalid: %v", err)
			}
			return nil
		}
	}
	return moduleFailf("rich-header", "found Rich marker at 0x%X without a DanS start", richAt)
}
