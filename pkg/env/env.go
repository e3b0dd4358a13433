package env

import "os"

const prefix = "ISHOS_"

// Get returns ISHOS_<key>, then the bare key, then fallback. It serves
// settings read before config.Load runs, such as the log format.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
