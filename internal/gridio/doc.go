// Package gridio reads and writes the sequential big-endian records that
// make up index files.
//
// Encoding:
//
//	int32    4 bytes, big-endian, two's complement
//	int16    2 bytes, big-endian, two's complement
//	bool     1 byte, 't' (116) or 'f' (102)
//	string   int16 byte length, then UTF-8 bytes
//	arrays   int32 element count, then the elements
//
// Writers buffer their output; call Flush before closing the underlying
// file.
package gridio
