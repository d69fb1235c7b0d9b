package compiler

// Exported helpers for testing internals from the
// compiler_test package.

// SlotCountForTest reports how many expressions tp holds.
func SlotCountForTest(tp *Template) int {
	return len(tp.slots)
}

// CacheSizeForTest reports how many templates co has cached.
func CacheSizeForTest(co *Compiler) int {
	if co.cache == nil {
		return 0
	}

	return co.cache.Len()
}
