package hostfs

import "context"

// Touch creates p as an empty file if it does not exist. An existing file
// is left unchanged.
// Analogous to: touch.
//
// New files are created with [FileMode](ctx), 0644 by default.
func (p Path) Touch(ctx context.Context) error {
	fsys, err := p.checked("touch")
	if err != nil {
		return err
	}
	return fsys.Touch(ctx, p.String(), FileMode(ctx))
}
