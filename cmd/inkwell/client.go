package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-news/inkwell/internal/client"
)

type clientFlags struct {
	baseURL string
	id      int64
	token   string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "url", "http://localhost:8080", "server URL")
	cmd.Flags().Int64Var(&f.id, "id", 0, "article id")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token")
	_ = cmd.MarkFlagRequired("id")
}

func (f *clientFlags) client() *client.Client {
	c := client.New(f.baseURL)
	c.Token = f.token
	return c
}

func getCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch an article",
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := flags.client().GetArticle(cmd.Context(), flags.id)
			if err != nil {
				return err
			}
			return printJSON(article)
		},
	}

	flags.register(cmd)
	return cmd
}

func upvoteCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "upvote",
		Short: "Upvote an article",
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := flags.client().UpvoteArticle(cmd.Context(), flags.id)
			if err != nil {
				return err
			}
			return printJSON(article)
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func commentCmd() *cobra.Command {
	var (
		flags clientFlags
		text  string
	)

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Comment on an article",
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := flags.client().AddComment(cmd.Context(), flags.id, text)
			if err != nil {
				return err
			}
			return printJSON(article)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "comment text")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
