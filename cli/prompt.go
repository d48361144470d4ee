package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"pdfvault/cli/styles"
)

// passwordPrompter asks for a password without echoing it. When confirm is
// set the password has to be typed twice.
type passwordPrompter func(title string, confirm bool) (string, error)

var errNoTerminal = errors.New("no terminal to prompt for a password, pass --password")

func promptPassword(title string, confirm bool) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errNoTerminal
	}

	var password string
	fields := []huh.Field{
		huh.NewInput().Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if len(s) == 0 {
					return errors.New("password can't be empty")
				}

				return nil
			}),
	}

	if confirm {
		fields = append(fields, huh.NewInput().Title("Confirm Password").
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if s != password {
					return errors.New("passwords do not match")
				}

				return nil
			}))
	}

	err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.Theme).Run()
	if err != nil {
		return "", err
	}

	return password, nil
}
