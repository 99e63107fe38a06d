package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		token, err := a.client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := a.sessions.Login(token, email); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		if !a.sessions.Active() {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := a.sessions.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		if err := a.client.Register(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Println("Account created. Run `reelrate login` to sign in.")
		return nil
	},
}

func promptCredentials() (string, string, error) {
	emailPrompt := promptui.Prompt{
		Label: "Email",
		Validate: func(input string) error {
			if !strings.Contains(input, "@") {
				return errors.New("enter a valid email address")
			}
			return nil
		},
	}
	email, err := emailPrompt.Run()
	if err != nil {
		return "", "", err
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}
