package utils

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GenerateLinkID returns a creation-time-derived id for a new link,
// compatible with the millisecond-timestamp ids of existing deployments.
func GenerateLinkID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// GenerateSessionToken generates an opaque admin session token.
func GenerateSessionToken() string {
	return uuid.NewString()
}
