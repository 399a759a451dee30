package hostfs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// MkdirTemp creates a new directory below p with a name of the form
// prefix-randomhex and mode 0700, and returns it.
// Analogous to: [os.MkdirTemp], mktemp -d.
//
// The caller is responsible for removing the directory when done. An empty
// prefix is replaced by "tmp".
func (p Path) MkdirTemp(ctx context.Context, prefix string) (Path, error) {
	if prefix == "" {
		prefix = "tmp"
	}
	ctx = WithDirMode(ctx, 0700)
	for range 3 {
		var b [16]byte
		if _, err := rand.Read(b[:]); err != nil {
			return Path{}, newPathError("mkdirtemp", p.String(), err)
		}
		dir := p.Join(prefix + "-" + hex.EncodeToString(b[:]))
		err := dir.Mkdir(ctx)
		if errors.Is(err, ErrExist) {
			continue
		}
		if err != nil {
			return Path{}, err
		}
		return dir, nil
	}
	return Path{}, newPathError("mkdirtemp", p.Join(prefix).String(), ErrExist)
}
