package chunk

import "github.com/pkg/errors"

// ErrNoPreviousChunk is returned when a Type-1, Type-2 or Type-3 chunk
// arrives on a chunk stream id that has never carried a Type-0 chunk: there
// is nothing to inherit the message header fields from.
var ErrNoPreviousChunk = errors.New("chunk: type 1/2/3 chunk with no preceding type 0 chunk on this chunk stream")

// ErrUnknownMessageType is returned by callers that choose to treat an
// unrecognized message type id as fatal instead of logging and dropping it.
var ErrUnknownMessageType = errors.New("chunk: unknown message type id")
