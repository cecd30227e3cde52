package services

import "fmt"

func statsCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d:stats", userID)
}

func activityCacheKey(userID uint, days int) string {
	return fmt.Sprintf("user:%d:activity:%d", userID, days)
}

// userCachePattern matches every cached read for one user.
func userCachePattern(userID uint) string {
	return fmt.Sprintf("^user:%d:", userID)
}
