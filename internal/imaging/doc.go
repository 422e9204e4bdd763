// Package imaging loads, caches and saves the raster files the watermark
// engine works on.
//
// Decoding goes through disintegration/imaging with EXIF auto-orientation, so
// a portrait JPEG shot on a phone is composited the way it displays. Every
// decode failure is reported as an errs.CodeDecode error naming the file.
//
// # Output
//
// Save picks PNG or JPEG from the destination extension. PNG keeps the alpha
// channel. JPEG has none, so the image is first flattened onto an opaque
// background colour (white unless configured). Files are written to a
// temporary name in the destination directory and renamed into place, so a
// failed encode never leaves a partial file behind.
//
// Batch output names follow OutputPath: <stem>_watermarked.<png|jpg>.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Images it returns are
// shared between callers and must not be modified. All other functions are
// stateless.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
