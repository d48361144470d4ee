package utils

import (
	"encoding/hex"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"pdfvault/shared/endpoints"
)

var sizePattern = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]*)$`)

// GetEnvVar is the primary method for reading variables from the environment.
// Note that variables are unset after they are retrieved, so the value needs
// to be stored in some way if it needs to be accessed more than once.
func GetEnvVar(key string, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}

	err := os.Unsetenv(key)
	if err != nil {
		log.Fatalf("Failed to unset %s key: %v\n", key, err)
	}

	return strings.TrimSpace(value)
}

// GetEnvVarInt retrieves a string value from the environment and converts it
// into an integer.
func GetEnvVarInt(key string, fallback int) int {
	value := GetEnvVar(key, strconv.Itoa(fallback))
	if value == "" {
		return fallback
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: Value for %s is not a valid number, using fallback...\n", key)
		return fallback
	}

	return num
}

// GetEnvVarBool retrieves a value from the environment and interprets it as a
// bool value -- 0/n/false == false, 1/y/true == true
func GetEnvVarBool(key string, fallback bool) bool {
	value := GetEnvVar(key, "")
	value = strings.ToLower(value)

	if value == "" {
		return fallback
	} else if value == "0" || value == "n" || value == "false" {
		return false
	} else if value == "1" || value == "y" || value == "true" {
		return true
	}

	return fallback
}

// StrToDuration converts strings like "30s", "10m", "2h" or "1d" into a
// duration. Unknown units return 0.
func StrToDuration(str string) time.Duration {
	if len(str) < 2 {
		return 0
	}

	unit := string(str[len(str)-1])
	length, err := strconv.Atoi(str[:len(str)-1])
	if err != nil {
		return 0
	}

	switch unit {
	case "d":
		return time.Duration(length) * time.Hour * 24
	case "h":
		return time.Duration(length) * time.Hour
	case "m":
		return time.Duration(length) * time.Minute
	case "s":
		return time.Duration(length) * time.Second
	}

	return 0
}

// ParseSizeString converts a size like "25MB" or "512K" into bytes. A bare
// number is read as bytes. Invalid strings return 0.
func ParseSizeString(str string) int64 {
	matches := sizePattern.FindStringSubmatch(strings.TrimSpace(str))
	if len(matches) != 3 {
		log.Printf("No match found for size string: %s\n", str)
		return 0
	}

	num, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		log.Printf("Error converting number: %v\n", err)
		return 0
	}

	letters := strings.ToUpper(matches[2])
	if len(letters) == 0 {
		return num
	}

	switch letters[0] {
	case 'T': // Terabyte
		return int64(1024) * 1024 * 1024 * 1024 * num
	case 'G': // Gigabyte
		return int64(1024) * 1024 * 1024 * num
	case 'M': // Megabyte
		return int64(1024) * 1024 * num
	case 'K': // Kilobyte
		return int64(1024) * num
	default:
		return num
	}
}

// Fingerprint returns a short, stable hash of a sensitive value (an email or
// a 2FA identifier) so that it can be written to logs.
func Fingerprint(value string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(sum[:6])
}

func Contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}

	return false
}

// GetTrailingURLSegments returns the path segments that follow the base of
// the first matching endpoint, e.g. "/api/v1/vault/share/abc/grant" with
// endpoints.SharedFile yields ["abc", "grant"].
func GetTrailingURLSegments(path string, strip ...endpoints.Endpoint) []string {
	path = strings.TrimSuffix(path, "/")

	for _, endpoint := range strip {
		endpointBase := strings.TrimSuffix(string(endpoint), "/*")
		if path == endpointBase {
			// There is no trailing segment, it ends with the base endpoint
			return []string{}
		}

		if strings.HasPrefix(path, endpointBase+"/") {
			path = strings.TrimPrefix(path, endpointBase)
			break
		}
	}

	path = strings.TrimPrefix(path, "/")
	if len(path) == 0 {
		return []string{}
	}

	return strings.Split(path, "/")
}
