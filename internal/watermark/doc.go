// Package watermark composites a mark image onto a canvas image.
//
// A compositing operation runs in a fixed order:
//
//  1. Config.Validate rejects out-of-range settings before any pixel work.
//  2. ScaleFactor and ScaledSize size the mark relative to the canvas
//     (LINEAR by width, AREA by area). A size that collapses to zero keeps
//     the original mark size.
//  3. ApplyOpacity multiplies the mark's alpha channel.
//  4. Place (SINGLE) or Grid.Offsets (TILE, checkerboard) yield stamp offsets.
//  5. Stamp paints each placed mark onto a transparent overlay, and
//     Composite blends the overlay over the canvas.
//
// Engine.Apply runs all of these; Engine.Plan runs only the geometry.
//
// # Pixel Format
//
// Images are handled as zero-origin *image.NRGBA buffers: straight
// (non-premultiplied) alpha, 8 bits per channel, row-major, so len(Pix) is
// width·height·4. ToRaster converts any decoded image into that form.
//
// # Thread Safety
//
// Every function is free of shared mutable state. Inputs are never
// modified: resizing and opacity work on copies, and each call allocates its
// own overlay. A decoded mark can therefore be shared read-only by any number
// of concurrent Apply calls.
//
// # Coordinate System
//
// (0,0) is the top-left canvas pixel. Offsets may be negative or extend past
// the canvas; such stamps are clipped, not rejected.
package watermark
