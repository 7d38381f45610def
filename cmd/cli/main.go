package main

import (
	"fmt"
	"os"

	"github.com/crucial707/social-auth/cmd/cli/auth"
	"github.com/crucial707/social-auth/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
