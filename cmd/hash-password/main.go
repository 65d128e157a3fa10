package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/logger"
	"github.com/stemsi/typequiz-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const minPasswordLen = 6

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── CLI Input ─────────────────────────────────────────────────────
	fmt.Fprintln(os.Stderr, "=== Generate ADMIN_PASSWORD_HASH ===")

	password, err := readPassword("Enter Password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	if len(password) < minPasswordLen {
		log.Fatal().Msgf("Password must be at least %d characters", minPasswordLen)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		confirm, err := readPassword("Confirm Password: ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read password")
		}
		if confirm != password {
			log.Fatal().Msg("Passwords do not match")
		}
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := service.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != cfg.BcryptCost {
		log.Warn().Int("configured", cfg.BcryptCost).Int("used", cost).Msg("BCRYPT_COST out of range, used default")
	}

	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
}

// readPassword prompts without echo on a terminal and reads a line when
// stdin is piped.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Newline after password input
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
