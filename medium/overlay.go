package medium

// overlay is a RAM image of a medium with the byte range written since the
// last flush. Reads are served from the image so pending writes are visible
// before Commit, like the write cache of an EEPROM emulation layer.
type overlay struct {
	image   []byte
	dirty   bool
	dirtyLo int64
	dirtyHi int64
}

func (o *overlay) size() int64 {
	return int64(len(o.image))
}

func (o *overlay) read(p []byte, off int64) (int, error) {
	if err := checkRange(off, len(p), o.size()); err != nil {
		return 0, err
	}

	return copy(p, o.image[off:]), nil
}

func (o *overlay) write(p []byte, off int64) (int, error) {
	if err := checkRange(off, len(p), o.size()); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := off + int64(len(p))
	if !o.dirty {
		o.dirty, o.dirtyLo, o.dirtyHi = true, off, end
	} else {
		o.dirtyLo = min(o.dirtyLo, off)
		o.dirtyHi = max(o.dirtyHi, end)
	}

	return copy(o.image[off:], p), nil
}

// pending returns the dirty range [lo, hi).
func (o *overlay) pending() (lo, hi int64, ok bool) {
	return o.dirtyLo, o.dirtyHi, o.dirty
}

func (o *overlay) markClean() {
	o.dirty, o.dirtyLo, o.dirtyHi = false, 0, 0
}

func fillBytes(b []byte, fill byte) {
	if fill == 0 {
		clear(b)
		return
	}
	for i := range b {
		b[i] = fill
	}
}
