package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizMonitorChannel returns the Redis PubSub channel name for a quiz session monitor
func (r *CacheKeyStruct) QuizMonitorChannel(sessionID string) string {
	return fmt.Sprintf("quiz:%s:monitor", sessionID)
}

// QuizMonitorPattern matches every quiz monitor channel
func (r *CacheKeyStruct) QuizMonitorPattern() string {
	return "quiz:*:monitor"
}

var CacheKey = NewCacheKeyStruct()
