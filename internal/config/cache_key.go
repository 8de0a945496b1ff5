package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key holding a user's active login token id.
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// SessionStartKey returns the cache key for an exam session's start time.
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:started_at", sessionID)
}

// ExamMonitorChannel returns the Redis Pub/Sub channel carrying live
// violation events for one exam.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
