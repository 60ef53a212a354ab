package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-facecraft/internal/client"
	"go-facecraft/internal/wizard"
	"go-facecraft/pkg/models"
)

var (
	red  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var rootCmd = &cobra.Command{
	Use:           "facecraft",
	Short:         "Turn a photo into a stylized avatar",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	viper.SetEnvPrefix("FACECRAFT")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:8080", "FaceCraft API server (env FACECRAFT_SERVER)")
	rootCmd.PersistentFlags().Duration("timeout", 3*time.Minute, "request timeout")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(newUploadCmd(), newStylesCmd(), newGenerateCmd(), newDownloadCmd(), newWizardCmd())
}

func newClient() *client.Client {
	return client.New(viper.GetString("server"), viper.GetDuration("timeout"))
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <photo>",
		Short: "Upload a photo and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := wizard.NewRunner(newClient(), wizard.NewProgress(cmd.OutOrStdout(), 500*time.Millisecond), cmd.OutOrStdout())
			return r.Upload(cmd.Context(), args[0])
		},
	}
}

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the style menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			styles, err := newClient().Styles(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), gray.Render("server unreachable, showing built-in menu"))
				styles = models.DefaultStyles
			}
			for _, s := range styles {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-14s %s\n", cyan.Render(s.ID), s.Name, gray.Render(s.Description))
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an avatar from an uploaded photo URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			photoURL, _ := cmd.Flags().GetString("photo")
			style, _ := cmd.Flags().GetString("style")

			r := wizard.NewRunner(newClient(), wizard.NewProgress(cmd.OutOrStdout(), 500*time.Millisecond), cmd.OutOrStdout())
			r.Session.UploadedPhotoURL = photoURL
			if err := r.SelectStyle(style); err != nil {
				return err
			}
			resp, err := r.Generate(cmd.Context())
			if err != nil {
				return err
			}
			if resp.Description != "" {
				fmt.Fprintln(cmd.OutOrStdout(), gray.Render(resp.Description))
			}
			return nil
		},
	}
	cmd.Flags().String("photo", "", "URL returned by upload")
	cmd.Flags().String("style", "", "style id from the menu, or any free-form style")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <avatar-url>",
		Short: "Save a generated avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, _ := cmd.Flags().GetString("output")
			if err := newClient().Download(cmd.Context(), args[0], dest); err != nil {
				return err
			}
			if info, err := os.Stat(dest); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", dest, humanize.IBytes(uint64(info.Size())))
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "avatar.png", "destination file")
	return cmd
}

func newWizardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard <photo>",
		Short: "Upload, stylize and download in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, _ := cmd.Flags().GetString("style")
			dest, _ := cmd.Flags().GetString("output")

			r := wizard.NewRunner(newClient(), wizard.NewProgress(cmd.OutOrStdout(), 500*time.Millisecond), cmd.OutOrStdout())
			return r.Run(cmd.Context(), args[0], style, dest)
		},
	}
	cmd.Flags().String("style", "", "style id from the menu, or any free-form style")
	cmd.Flags().StringP("output", "o", "avatar.png", "destination file; empty skips the download")
	return cmd
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
