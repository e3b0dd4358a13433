package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ishos/storefront/pkg/security"
)

// staff-token prints a fresh staff bearer token and the Argon2id hash to put
// in ISHOS_STAFF_TOKEN. Pass -token to hash an existing secret instead.
func main() {
	secret := flag.String("token", "", "existing token to hash")
	length := flag.Int("bytes", 24, "random bytes for a generated token")
	flag.Parse()

	token := *secret
	if token == "" {
		generated, err := security.GenerateToken(*length)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
			os.Exit(1)
		}
		token = generated
	}

	hash, err := security.HashToken(token, security.DefaultParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("token:", token)
	fmt.Println("ISHOS_STAFF_TOKEN=" + hash)
}
