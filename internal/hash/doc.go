// Package hash provides the checksum used by the archive format.
//
// Every archive header and every section payload is protected by a
// CRC32-Castagnoli (CRC32C) checksum. The same checksum is sent to S3 as the
// object integrity checksum so a blob can be verified end to end.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
