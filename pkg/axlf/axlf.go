// Package axlf implements a reader, validator and builder for the AXLF
// ("xclbin") container format.
//
// An AXLF container packages FPGA programming images and their metadata into a
// single relocatable file: a fixed header, a table of section descriptors and
// the section payloads those descriptors point at. Everything returned by this
// package is a view over the buffer handed to Parse (or mapped by Open); views
// must not be used after File.Close.
package axlf

// AXLF global constants must never change.
const (
	// Magic is the 8-byte sentinel at offset 0 of every container.
	Magic = "xclbin2\x00"

	magicSize    = 8
	cipherSize   = 32
	keyBlockSize = 256

	cipherOffset   = magicSize
	keyBlockOffset = cipherOffset + cipherSize
	uniqueIDOffset = keyBlockOffset + keyBlockSize

	// HeaderOffset is where the axlf_header record starts.
	HeaderOffset = uniqueIDOffset + 8

	// HeaderSize is the encoded width of the axlf_header record.
	HeaderSize = 152

	// DescriptorOffset is where the section descriptor table starts.
	DescriptorOffset = HeaderOffset + HeaderSize

	// DescriptorSize is the encoded width of one section descriptor.
	DescriptorSize = 40

	// payloadAlign keeps payload starts aligned for readers that overlay structs.
	payloadAlign = 8
)
