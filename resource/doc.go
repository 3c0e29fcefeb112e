// Package resource bounds the memory and IO a process spends on sequences.
//
// A Controller is shared by every sequence built with the same options:
//
//   - Memory: backing-store reallocations reserve their byte delta up front and
//     fail fast with ErrMemoryLimitExceeded when the budget is exhausted.
//   - Workers: LoadBlobs takes one worker slot per concurrent download.
//   - IO: blob reads and writes wait on a token bucket sized in bytes/second.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	seq := arrayseq.New(arrayseq.WithResourceController(rc))
//
// A nil *Controller is valid and imposes no limits.
package resource
