// Package scan declares the capture collaborators the core consumes. The
// devices themselves live outside this repo; the core only needs the decoded
// results.
package scan

import "context"

// BarcodeReader yields decoded barcode strings from a capture device.
type BarcodeReader interface {
	Read(ctx context.Context) (string, error)
}

// ImageCapturer takes a picture and stores it, returning the opaque
// reference key the catalog keeps on the product. Format and storage
// location are the capturer's concern.
type ImageCapturer interface {
	Capture(ctx context.Context) (key string, err error)
}
