package command

import (
	"fmt"
	"time"

	"bookhub/cmd/cli/authentication"
	"bookhub/cmd/cli/command/client"
	"bookhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// auth.go handles the register, login and logout commands.

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the BookHub API server. Supports login, registration, logout.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new BookHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Email, _ = cmd.Flags().GetString("email")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Register(ctx, &req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.UserID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login with your username or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Login, _ = cmd.Flags().GetString("login")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Login(ctx, &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		creds := &authentication.StoredCredentials{
			AccessToken: response.AccessToken,
			Username:    response.Username,
			UserID:      response.UserID,
			ExpiresAt:   time.Now().Add(time.Duration(response.ExpiresIn) * time.Second).Unix(),
		}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not save credentials: %w", err)
		}

		fmt.Printf("✓ Logged in as %s\n", response.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your BookHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err == nil {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			// the local credentials are dropped even if the server is unreachable
			if err := httpClient.Logout(ctx); err != nil {
				fmt.Printf("warning: server logout failed: %v\n", err)
			}
		}

		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("could not clear credentials: %w", err)
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s), session expires %s\n", creds.Username, creds.UserID,
			time.Unix(creds.ExpiresAt, 0).Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the account")
	registerCmd.Flags().StringP("email", "e", "", "Email for the account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("login", "u", "", "Username or email")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("login")
	loginCmd.MarkFlagRequired("password")
}
