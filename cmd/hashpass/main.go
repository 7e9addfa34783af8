// Command hashpass reads an admin password from stdin and prints the bcrypt
// hash to put into ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Dosada05/design-survey/utils"
)

func main() {
	cost := flag.Int("cost", utils.BcryptCost, "bcrypt cost")
	flag.Parse()

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		slog.Error("failed to read password from stdin", slog.Any("error", err))
		os.Exit(1)
	}

	hash, err := utils.HashPassword(password, *cost)
	if err != nil {
		slog.Error("failed to hash password", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(hash)
}
