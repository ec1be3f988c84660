// Package imaging normalizes input images into a single transmittable
// payload for vision providers.
//
// Accepted source forms: a raw pixel buffer with an explicit channel order,
// a decoded image.Image, or a filesystem path. Every source is re-encoded
// to JPEG at a fixed quality and base64-encoded, so identical input pixels
// always produce identical payloads regardless of the source form.
package imaging
