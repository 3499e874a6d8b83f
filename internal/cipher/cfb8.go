package cipher

import stdcipher "crypto/cipher"

// cfb8 implements 8-bit-feedback CFB over an arbitrary block cipher,
// matching Bedrock's encryption discipline. The standard library only
// exposes full-block-width CFB (crypto/cipher.NewCFBEncrypter), so the
// one-byte-at-a-time feedback register is driven by hand here.
type cfb8 struct {
	block    stdcipher.Block
	shift    []byte // shift register, len == block.BlockSize()
	decrypt  bool
	feedback []byte // scratch buffer, block.BlockSize()
}

func newCFB8(block stdcipher.Block, iv []byte, decrypt bool) *cfb8 {
	bs := block.BlockSize()
	shift := make([]byte, bs)
	copy(shift, iv)
	return &cfb8{
		block:    block,
		shift:    shift,
		decrypt:  decrypt,
		feedback: make([]byte, bs),
	}
}

// XORKeyStream encrypts or decrypts src into dst, one byte at a time,
// advancing the shift register after every byte so the IV effectively
// evolves across the whole stream.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	for i := range src {
		c.block.Encrypt(c.feedback, c.shift)
		out := src[i] ^ c.feedback[0]
		// The shift register always advances on the ciphertext byte,
		// whichever side of the XOR produced it.
		if c.decrypt {
			c.advance(src[i])
		} else {
			c.advance(out)
		}
		dst[i] = out
	}
}

// advance drops the oldest byte of the shift register and appends the
// most recent ciphertext byte, continuing the same keystream across
// messages (Bedrock never resets the IV per-message).
func (c *cfb8) advance(cipherByte byte) {
	copy(c.shift, c.shift[1:])
	c.shift[len(c.shift)-1] = cipherByte
}

// IV returns the current 16-byte state of the shift register, i.e. the
// "last 16 bytes of the CFB state" spec.md's Encryptor names as the
// evolving IV after a message is processed.
func (c *cfb8) IV() []byte {
	out := make([]byte, len(c.shift))
	copy(out, c.shift)
	return out
}
