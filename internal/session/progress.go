package session

import "strconv"

const maxProgress = 100

// parseProgressInput sanitizes raw progress input. Non-digit runes are
// dropped, so "45%" and "4a5" both read as 45. An input with no digits
// maps to unset rather than zero: an empty field means "not reported",
// not "0% done". Values above 100 clamp to 100.
func parseProgressInput(input string) *int {
	digits := make([]rune, 0, len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return nil
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		// Only possible on overflow-length digit runs.
		n = maxProgress
	}
	if n > maxProgress {
		n = maxProgress
	}
	return &n
}
