package command

import (
	"fmt"

	"bookhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Manage your favorite books",
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add [book-id...]",
	Short: "Add one or more books to your favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.AddFavorites(ctx, args...)
		if err != nil {
			return fmt.Errorf("failed to add favorites: %w", err)
		}
		fmt.Printf("✓ Added %d book(s)\n", len(args))
		printFavorites(result)
		return nil
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove [book-id]",
	Short: "Remove a book from your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.RemoveFavorite(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		fmt.Printf("✓ Removed %s\n", args[0])
		printFavorites(result)
		return nil
	},
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorite books",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.ListFavorites(ctx)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		printFavorites(result)
		return nil
	},
}

var favoriteCheckCmd = &cobra.Command{
	Use:   "check [book-id]",
	Short: "Check whether a book is in your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		ok, err := httpClient.IsFavorite(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to check favorite: %w", err)
		}
		if ok {
			fmt.Printf("%s is in your favorites\n", args[0])
		} else {
			fmt.Printf("%s is not in your favorites\n", args[0])
		}
		return nil
	},
}

func printFavorites(list *dto.FavoriteListResponse) {
	if list.Total == 0 {
		fmt.Println("No favorite books yet.")
		return
	}
	fmt.Printf("Favorites of %s (%d):\n", list.Username, list.Total)
	for i, id := range list.BookIDs {
		fmt.Printf("%3d. %s\n", i+1, id)
	}
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	favoriteCmd.AddCommand(favoriteAddCmd, favoriteRemoveCmd, favoriteListCmd, favoriteCheckCmd)
}
