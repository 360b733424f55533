// Package ndimage provides the n-dimensional sample container used by the
// subpixel locators.
//
// An Image wraps a typed Go slice together with per-axis sizes and strides.
// Axis 0 varies fastest, so a 2-D image of width W and height H stored in a
// []uint8 of length W*H uses the same layout as image.Gray's Pix when the
// stride equals the width.
//
// # Data Types
//
// The storage type is fixed when the image is constructed and reported by
// DataType. Code that needs raw access resolves it once with Samples[T]:
//
//	if pix, ok := ndimage.Samples[uint16](img); ok {
//	    // operate on pix directly
//	}
//
// # Masks
//
// Binary images double as masks. CheckMask and Broadcast implement singleton
// expansion: a mask axis of size 1 applies to every index along that axis.
package ndimage
