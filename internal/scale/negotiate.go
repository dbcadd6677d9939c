package scale

// TryWindowScale decides whether the session factors reproduce a window's
// requested pixel size exactly, and installs or clears the surface
// override accordingly. Call it whenever a window's guest pixel size is
// established or changes. Legacy sessions never negotiate.
//
// The size is first round-tripped through the session defaults. If it
// comes back unchanged, or the intermediate host size is degenerate, the
// override resets and the defaults stay in charge. Otherwise an override
// is installed from the exact pixel-to-host ratio, the host size is cached
// on the override, and the round trip is tested once more with the new
// factors; any axis that still drifts gets its rounding flag set, which
// makes HostToGuest round to nearest on that axis and absorbs the last
// unit of truncation error.
func TryWindowScale(cfg Config, o *Override, widthPx, heightPx int32) {
	if !cfg.Direct() {
		return
	}

	logicalW, logicalH := GuestToHost(cfg, nil, widthPx, heightPx)
	reverseW, reverseH := HostToGuest(cfg, nil, logicalW, logicalH)

	if (reverseW != widthPx || reverseH != heightPx) && logicalW > 0 && logicalH > 0 {
		o.Active = true
		o.ScaleX = float64(widthPx) / float64(logicalW)
		o.ScaleY = float64(heightPx) / float64(logicalH)
		o.LogicalWidth = logicalW
		o.LogicalHeight = logicalH
		o.RoundX = false
		o.RoundY = false

		hostW, hostH := GuestToHost(cfg, o, widthPx, heightPx)
		reverseW, reverseH = HostToGuest(cfg, o, hostW, hostH)

		if reverseW != widthPx {
			o.RoundX = true
		}
		if reverseH != heightPx {
			o.RoundY = true
		}
	} else {
		o.Reset()
	}
}
