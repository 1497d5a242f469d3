// Package imageio moves pixels between image files and float buffers.
//
// Buffers hold straight (not premultiplied) RGBA in [0, 1]. Decoding
// understands PNG, JPEG, GIF, TIFF, BMP and WebP; encoding writes 16-bit PNG
// or TIFF, chosen by file extension.
package imageio
