//go:build debug_fifo_arena

package fifoarena

// DebugValidate will call Validate on the provided object and panics if any errors are
// returned. This method no-ops unless the debug_fifo_arena build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckBlockSizeBounds will verify that the provided block length range is usable,
// and panics if it is not. This method no-ops unless the debug_fifo_arena build tag is
// present.
func DebugCheckBlockSizeBounds(minSize, maxSize int, name string) {
	err := CheckBlockSizeBounds(minSize, maxSize, name)
	if err != nil {
		panic(err)
	}
}
