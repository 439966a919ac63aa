package command

import (
	"fmt"
	"strconv"

	"bookhub/cmd/cli/command/client"
	"bookhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var ratingCmd = &cobra.Command{
	Use:   "rating",
	Short: "Rating management commands",
	Long:  `Manage book ratings: create/update, view, delete, list and statistics`,
}

var rateCmd = &cobra.Command{
	Use:   "rate [book-id] [stars]",
	Short: "Rate a book (1-5 stars)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stars, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid stars: %w", err)
		}
		if stars < 1 || stars > 5 {
			return fmt.Errorf("stars must be between 1 and 5")
		}

		var comment *string
		if cmd.Flags().Changed("comment") {
			text, _ := cmd.Flags().GetString("comment")
			comment = &text
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.Rate(ctx, args[0], stars, comment)
		if err != nil {
			return fmt.Errorf("failed to rate book: %w", err)
		}

		if result.Created {
			fmt.Println("✓ Rating submitted!")
		} else {
			fmt.Println("✓ Rating updated!")
		}
		fmt.Printf("Book: %s  Stars: %d/5  At: %s\n", result.Rating.BookID, result.Rating.Stars,
			result.Rating.RatedAt.Format(timeLayout))
		return nil
	},
}

var getRatingCmd = &cobra.Command{
	Use:   "get [book-id]",
	Short: "Get your rating for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.GetMyRating(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get rating: %w", err)
		}
		if !result.Rated || result.Rating == nil {
			fmt.Printf("You have not rated %s yet.\n", args[0])
			return nil
		}
		fmt.Printf("Your rating for %s: %d/5 (%s)\n", args[0], result.Rating.Stars,
			result.Rating.RatedAt.Format(timeLayout))
		if result.Rating.Comment != nil {
			fmt.Printf("Comment: %s\n", *result.Rating.Comment)
		}
		return nil
	},
}

var deleteRatingCmd = &cobra.Command{
	Use:   "delete [book-id]",
	Short: "Delete your rating for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		removed, err := httpClient.DeleteRating(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete rating: %w", err)
		}
		if removed {
			fmt.Println("✓ Rating deleted.")
		} else {
			fmt.Println("Nothing to delete.")
		}
		return nil
	},
}

var listRatingsCmd = &cobra.Command{
	Use:   "list [book-id]",
	Short: "List the most recent ratings of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListBookRatings(ctx, args[0], limit)
		if err != nil {
			return fmt.Errorf("failed to list ratings: %w", err)
		}
		printRatings(result)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [book-id]",
	Short: "Show rating statistics of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		stats, err := newClient().GetStats(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		if stats == nil {
			fmt.Printf("%s has no ratings yet.\n", args[0])
			return nil
		}

		fmt.Printf("%s: %.1f/5 from %d rating(s)\n", stats.BookID, stats.Mean, stats.Total)
		for star := 5; star >= 1; star-- {
			fmt.Printf("  %d★ %5d  (%.1f%%)\n", star, stats.Distribution[star], stats.Percentages[star])
		}
		return nil
	},
}

var myRatingsCmd = &cobra.Command{
	Use:   "mine",
	Short: "List all your ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.MyRatings(ctx)
		if err != nil {
			return fmt.Errorf("failed to list your ratings: %w", err)
		}
		printRatings(result)
		return nil
	},
}

var topRatedCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the best rated books",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		minRatings, _ := cmd.Flags().GetInt("min-ratings")
		ctx, cancel := commandContext(cmd)
		defer cancel()

		books, err := newClient().TopRated(ctx, limit, minRatings)
		if err != nil {
			return fmt.Errorf("failed to get top rated books: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("No books with enough ratings yet.")
			return nil
		}
		for i, b := range books {
			fmt.Printf("%3d. %-30s %.1f/5 (%d)\n", i+1, b.BookID, b.Mean, b.Total)
		}
		return nil
	},
}

// newClient uses stored credentials when present, public routes work without them
func newClient() *client.HTTPClient {
	if c, err := GetAuthenticatedClient(); err == nil {
		return c
	}
	return client.NewHTTPClient(apiURL)
}

func printRatings(list *dto.RatingListResponse) {
	if list.Total == 0 {
		fmt.Println("No ratings found.")
		return
	}
	for _, r := range list.Data {
		fmt.Printf("%-20s %-20s %d/5  %s\n", r.BookID, r.Username, r.Stars, r.RatedAt.Format(timeLayout))
		if r.Comment != nil {
			fmt.Printf("    %s\n", *r.Comment)
		}
	}
	fmt.Printf("Total: %d\n", list.Total)
}

func init() {
	rootCmd.AddCommand(ratingCmd)
	ratingCmd.AddCommand(rateCmd, getRatingCmd, deleteRatingCmd, listRatingsCmd, statsCmd, myRatingsCmd, topRatedCmd)

	rateCmd.Flags().StringP("comment", "c", "", "Optional review text")
	listRatingsCmd.Flags().IntP("limit", "l", 0, "Maximum number of ratings (server default when 0)")
	topRatedCmd.Flags().IntP("limit", "l", 0, "Number of books (server default when 0)")
	topRatedCmd.Flags().Int("min-ratings", 0, "Minimum number of ratings (server default when 0)")
}
