package domain

import "errors"

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrTopicNotFound     = errors.New("topic not found")
	ErrScoreNotFound     = errors.New("compatibility score not found")
	ErrNoValidTopics     = errors.New("no valid topics in preference set")
	ErrMatchQueryFailed  = errors.New("match query failed")
	ErrInvalidPreference = errors.New("invalid preference")
)
