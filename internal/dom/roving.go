package dom

// RovingTarget maps a navigation key to the index focus should move to
// within a group of count controls. Arrow keys wrap around.
func RovingTarget(key string, index, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	if index < 0 {
		index = 0
	}
	switch key {
	case "ArrowRight", "ArrowDown":
		return (index + 1) % count, true
	case "ArrowLeft", "ArrowUp":
		return (index - 1 + count) % count, true
	case "Home":
		return 0, true
	case "End":
		return count - 1, true
	}
	return index, false
}

// IsActivationKey reports Enter and Space.
func IsActivationKey(key string) bool {
	switch key {
	case "Enter", " ", "Spacebar":
		return true
	}
	return false
}
