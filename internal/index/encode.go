package index

import (
	"encoding/binary"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
)

// key = kind + 0x00 + value; slugs are folded so lookups ignore case
func makePathKey(kind site.IdentifierKind, value string) []byte {
	if kind == site.KindSlug {
		value = content.FoldKey(value)
	}
	buf := make([]byte, 0, len(kind)+1+len(value))
	buf = append(buf, kind...)
	buf = append(buf, 0x00)
	buf = append(buf, value...)
	return buf
}

func makeSeqKey(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
