package common

import (
	"math/rand/v2"
	"strconv"
)

const codeCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderCode returns the 7 character narration customers quote on bank transfers.
func GenerateOrderCode() string {
	result := make([]byte, 7)
	for i := range result {
		result[i] = codeCharacters[rand.IntN(len(codeCharacters))]
	}
	return string(result)
}

// ParsePage reads page/limit query values, falling back to page 1 and the given limit.
func ParsePage(pageStr, limitStr string, defaultLimit, maxLimit int) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
