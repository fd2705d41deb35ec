package formats

import "go.uber.org/zap"

// DefaultMaxPaddingScan bounds the TRM zero-padding scans. Scanning to
// end-of-buffer on corrupt input would otherwise be unbounded; real
// files pad far less than this.
const DefaultMaxPaddingScan = 65536

// DecodeOptions tune decoder behavior. The zero value is usable.
type DecodeOptions struct {
	// Logger receives the warn-and-continue recoveries: material index
	// clamps, constant-byte mismatches. Defaults to a nop logger.
	Logger *zap.Logger

	// MaxPaddingScan caps how many zero bytes a TRM padding scan may
	// consume before failing with ErrPaddingScanExceeded. Defaults to
	// DefaultMaxPaddingScan.
	MaxPaddingScan int
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.MaxPaddingScan <= 0 {
		o.MaxPaddingScan = DefaultMaxPaddingScan
	}
	return o
}
