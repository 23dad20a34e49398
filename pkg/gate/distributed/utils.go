package distributed

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"
)

// generateInstanceID creates a unique identifier for this application instance.
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	pid := os.Getpid()

	// Add random bytes for uniqueness
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)

	return fmt.Sprintf("%s-%d-%x-%d",
		hostname, pid, randomBytes, time.Now().Unix())
}

// redisKeys generates Redis keys for the coalescer's data structures.
func redisKeys(prefix string) map[string]string {
	return map[string]string{
		"bursts":    prefix + ":bursts",
		"stats":     prefix + ":stats",
		"instances": prefix + ":instances",
	}
}
