// Package batch applies one watermark to many canvases.
//
// Discover turns an input argument into a list of canvas files: the file
// itself, or the supported images directly inside a directory (no
// recursion). A Runner then composites each canvas on a bounded pool of
// workers and writes <stem>_watermarked.<format> into the output directory.
//
// The mark is decoded once and shared read-only by every worker. A file
// that fails to decode, composite or encode is recorded in the Summary and
// the remaining files carry on; configuration errors never reach the
// runner because NewRunner validates everything up front.
//
// With more than one worker each composite runs serially on its worker;
// a single worker lets the engine split rows across the CPUs instead.
package batch
