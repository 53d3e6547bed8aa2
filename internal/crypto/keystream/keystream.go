// Keystream cipher applied by the timing provider to feed payloads
package keystream

const (
	// Initial keystream register value
	DefaultMask uint32 = 0x55555555

	// Seed used before a session has been announced. Leaves data untouched.
	DefaultSeed uint32 = 0
)

// Stateful keystream decrypter. Not safe for concurrent use.
type Decrypter struct {
	seed uint32
	mask uint32
}

func New(seed uint32) (decrypter *Decrypter) {
	decrypter = &Decrypter{seed: seed, mask: DefaultMask}
	return
}

// Decrypts buf in place, advancing the keystream by len(buf) bytes
func (d *Decrypter) Decrypt(buf []byte) {
	if d.seed == DefaultSeed {
		return
	}
	for i := range buf {
		if d.mask&1 == 1 {
			d.mask = ((d.mask >> 1) & 0x7FFFFFFF) ^ d.seed
		} else {
			d.mask = (d.mask >> 1) & 0x7FFFFFFF
		}
		buf[i] ^= byte(d.mask)
	}
}

// XOR keystream, so encryption is the same operation
func (d *Decrypter) Encrypt(buf []byte) {
	d.Decrypt(buf)
}

// Restarts the keystream from the beginning
func (d *Decrypter) Reset() {
	d.mask = DefaultMask
}

func (d *Decrypter) Seed() uint32 {
	return d.seed
}
