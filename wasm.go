package hoaxrt

// Memory is read access to the guest module's linear memory.
// Pointer-tagged words address heap blocks inside this memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
}

// MemorySizer provides the current size of the linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}
