package runtime

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode encodes in canonical mode, grounded on the retrieved pack's
// own CBOR wire-format package (dist.cborEncMode): deterministic field
// ordering so two encodes of an unchanged InstructionBlock always produce
// identical bytes, which matters for content-addressed caching of
// compiled blocks.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalInstructionBlock serializes a compiled function body to CBOR, the
// wire format an embedder uses to ship a precompiled block to another
// process (or cache one to disk) instead of re-assembling it every run.
func MarshalInstructionBlock(b *InstructionBlock) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalInstructionBlock is MarshalInstructionBlock's inverse.
func UnmarshalInstructionBlock(data []byte) (*InstructionBlock, error) {
	var b InstructionBlock
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("runtime: unmarshal instruction block: %w", err)
	}
	return &b, nil
}
